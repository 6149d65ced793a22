package apicontract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/digital-store/api-contract"
)

func TestLoad(t *testing.T) {
	doc, err := apicontract.Load(context.Background())
	require.NoError(t, err)

	for _, path := range []string{
		"/api/products",
		"/api/products/update",
		"/api/products/delete",
		"/api/categories",
		"/api/auth/login",
		"/api/profile",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}
