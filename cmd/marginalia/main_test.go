package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/passthrough"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/pdf/pdfcpu"
	"github.com/custodia-labs/marginalia/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/marginalia/internal/core/domain"
)

func TestNewAnnotationStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, closeStore, err := newAnnotationStore(domain.StoreBackendMemory)
		require.NoError(t, err)
		defer closeStore()
		assert.IsType(t, &memory.AnnotationStore{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		store, closeStore, err := newAnnotationStore(domain.StoreBackendSQLite)
		require.NoError(t, err)
		defer closeStore()

		id, err := store.NextID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})
}

func TestNewExporter(t *testing.T) {
	assert.IsType(t, &passthrough.Exporter{}, newExporter(domain.ExportModePassthrough))
	assert.IsType(t, &pdfcpu.Exporter{}, newExporter(domain.ExportModeStamp))
}
