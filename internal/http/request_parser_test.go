package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireMethod(t *testing.T) {
	post := httptest.NewRequest(http.MethodPost, "/x", nil)
	assert.Nil(t, RequirePOST(post))
	assert.Nil(t, RequireDeleteOrPOST(post))

	get := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.NotNil(t, RequirePOST(get))

	del := httptest.NewRequest(http.MethodDelete, "/x", nil)
	assert.NotNil(t, RequirePOST(del))
	assert.Nil(t, RequireDeleteOrPOST(del))
}

func TestFormValueSanitizesControlChars(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("name=ab%00c%07d"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.Nil(t, ParseFormOrFail(req))

	assert.Equal(t, "abcd", formValue(req, "name"))
	assert.Equal(t, "", formValue(req, "missing"))
}

func TestPageParam(t *testing.T) {
	cases := map[string]int{
		"/x":          1,
		"/x?page=":    1,
		"/x?page=3":   3,
		"/x?page=0":   1,
		"/x?page=-2":  1,
		"/x?page=abc": 1,
	}
	for target, want := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		assert.Equal(t, want, pageParam(req), "target %s", target)
	}
}
