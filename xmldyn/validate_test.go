package xmldyn_test

import (
	"testing"

	"github.com/corvantis/xmlserde/xmldyn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverConfigXML = `<server>` +
	`<port>8080</port>` +
	`<host>api.corvantis.test</host>` +
	`<env>staging</env>` +
	`</server>`

func TestValidatePassesWhenRulesSatisfied(t *testing.T) {
	v, err := xmldyn.ParseString(serverConfigXML)
	require.NoError(t, err)

	errs := xmldyn.Validate(v.Map(), []xmldyn.Rule{
		{Path: "port", Required: true, Type: "int", Min: 1, Max: 65535},
		{Path: "env", Required: true, Type: "string", Enum: []string{"staging", "production"}},
	})
	assert.Empty(t, errs)
}

func TestValidateReportsMissingRequiredPath(t *testing.T) {
	v, err := xmldyn.ParseString(serverConfigXML)
	require.NoError(t, err)

	errs := xmldyn.Validate(v.Map(), []xmldyn.Rule{
		{Path: "timeout", Required: true},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "timeout")
}

func TestValidateReportsOutOfRangeAndBadEnum(t *testing.T) {
	v, err := xmldyn.ParseString(serverConfigXML)
	require.NoError(t, err)

	errs := xmldyn.Validate(v.Map(), []xmldyn.Rule{
		{Path: "port", Type: "int", Max: 1024},
		{Path: "env", Type: "string", Enum: []string{"production"}},
	})
	require.Len(t, errs, 2)
}

func TestValidateSkipsAbsentOptionalPath(t *testing.T) {
	v, err := xmldyn.ParseString(serverConfigXML)
	require.NoError(t, err)

	errs := xmldyn.Validate(v.Map(), []xmldyn.Rule{
		{Path: "retries"},
	})
	assert.Empty(t, errs)
}
