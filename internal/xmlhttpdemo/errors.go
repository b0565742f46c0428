package xmlhttpdemo

import "errors"

var (
	errBodyTooLarge      = errors.New("request body exceeds the demo's size limit")
	errMissingQueryParam = errors.New(`missing required "q" query parameter`)
)
