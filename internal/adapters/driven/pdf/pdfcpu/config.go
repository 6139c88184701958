// Package pdfcpu adapts github.com/pdfcpu/pdfcpu as the metadata collaborator
// and the stamping exporter.
package pdfcpu

import (
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// configuration returns a fresh pdfcpu configuration. pdfcpu writes the
// current command into the configuration, so it is never shared between
// calls; only the process-wide config dir switch is set once.
func configuration() *model.Configuration {
	// pdfcpu recommends api.DisableConfigDir() when used from multiple goroutines.
	disableConfigDir.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}
