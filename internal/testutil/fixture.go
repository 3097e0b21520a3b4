package testutil

import (
	"bytes"
	"fmt"
)

// PageWidth returns the MediaBox width BuildPDF gives page i, so tests can
// recognise pages after they have been moved between documents.
func PageWidth(i int) float64 {
	return float64(200 + 10*i)
}

// BuildPDF writes a minimal, valid PDF with one page per entry in labels.
// Page i has a MediaBox of PageWidth(i) x 300 and draws its label as text.
func BuildPDF(labels ...string) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	n := len(labels)
	// 1: catalog, 2: pages, 3: font, then page/content pairs.
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := 0; i < n; i++ {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, n))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, label := range labels {
		obj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g 300] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			PageWidth(i), 5+2*i,
		))
		stream := fmt.Sprintf("BT /F1 12 Tf 20 150 Td (%s) Tj ET", label)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}
