// Package pdftest builds small, valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Info holds the Info dictionary entries written by Build.
// Empty fields are omitted.
type Info struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	CreationDate string
}

// Options describes the document Build produces.
type Options struct {
	// Pages lists the text shown on each page; one entry per page.
	Pages []string

	// Width and Height set the inherited MediaBox. Zero means US Letter.
	Width  float64
	Height float64

	Info Info
}

// Build returns a PDF with one Helvetica text line per page at (72, 720).
// The MediaBox lives on the page tree root so pages inherit it.
func Build(opts Options) []byte {
	if len(opts.Pages) == 0 {
		opts.Pages = []string{"Hello World"}
	}
	if opts.Width == 0 {
		opts.Width = 612
	}
	if opts.Height == 0 {
		opts.Height = 792
	}

	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	catalog := add("") // placeholder, filled once the page tree number is known
	pagesNum := add("")
	font := add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var kids []string
	for _, text := range opts.Pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escape(text))
		content := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
		page := add(fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			pagesNum, font, content))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}

	objects[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesNum)
	objects[pagesNum-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 %s %s] >>",
		strings.Join(kids, " "), len(kids), num(opts.Width), num(opts.Height))

	info := 0
	if entries := infoEntries(opts.Info); entries != "" {
		info = add("<< " + entries + " >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R", len(objects)+1, catalog)
	if info > 0 {
		fmt.Fprintf(&buf, " /Info %d 0 R", info)
	}
	fmt.Fprintf(&buf, " >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func infoEntries(info Info) string {
	var parts []string
	for _, kv := range [][2]string{
		{"Title", info.Title},
		{"Author", info.Author},
		{"Subject", info.Subject},
		{"Keywords", info.Keywords},
		{"CreationDate", info.CreationDate},
	} {
		if kv[1] != "" {
			parts = append(parts, fmt.Sprintf("/%s (%s)", kv[0], escape(kv[1])))
		}
	}
	return strings.Join(parts, " ")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func num(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
