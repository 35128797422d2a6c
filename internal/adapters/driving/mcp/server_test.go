package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil catalog service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingCatalogService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(newTestPorts())
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil catalog service returns error", func(t *testing.T) {
		ports := &Ports{Collection: newTestPorts().Collection}
		assert.ErrorIs(t, ports.Validate(), ErrMissingCatalogService)
	})

	t.Run("nil collection service returns error", func(t *testing.T) {
		ports := &Ports{Catalog: newTestPorts().Catalog}
		assert.ErrorIs(t, ports.Validate(), ErrMissingCollectionService)
	})

	t.Run("conversion is optional", func(t *testing.T) {
		p := newTestPorts()
		p.Conversion = nil
		assert.NoError(t, p.Validate())
	})
}
