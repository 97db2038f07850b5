package render

import (
	"github.com/abdulachik/litlens/internal/analysis"
	"github.com/abdulachik/litlens/internal/profile"
	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Malgun Gothic"
	fontSize  = 11
	titleSize = 16
)

// WriteDocx writes r to path as a Word document using the same layout as Text.
func WriteDocx(r *analysis.Result, labels profile.Labels, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addRun(doc.AddParagraph(""), r.Title(labels.FallbackTitle), true, titleSize)
	doc.AddParagraph("")

	for i, seq := range r.Sequences {
		if i > 0 {
			doc.AddParagraph("")
		}
		for _, l := range sequenceLines(r, seq, labels) {
			addRun(doc.AddParagraph(""), l.text, l.kind == lineHeader, fontSize)
		}
	}

	return doc.SaveTo(path)
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	if text == "" {
		return
	}
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
