// Package pdf groups the adapters that consume third-party PDF libraries.
//
//   - textlayer: page count, page sizes and positioned text (ledongthuc/pdf)
//   - pdfcpu: metadata extraction and stamp export (pdfcpu)
//   - passthrough: export that returns the original bytes
package pdf
