package xmlhttpdemo_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corvantis/xmlserde/internal/xmlhttpdemo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *httptest.Server {
	return httptest.NewServer(xmlhttpdemo.New(nil).Handler())
}

func TestHandleDecodeReturnsJSONShape(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/decode", "application/xml", strings.NewReader(`<order id="1"><item>Widget</item></order>`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "json")
}

func TestHandleEncodeReturnsXML(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/encode", "application/json", strings.NewReader(`{"order":{"-id":"1","item":"Widget"}}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "xml")
}

func TestHandleQueryRequiresQParam(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/query", "application/xml", strings.NewReader(`<order/>`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleQueryReturnsMatches(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/query?q=item", "application/xml",
		strings.NewReader(`<order><item>Widget</item><item>Gadget</item></order>`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
