package editor

import (
	"context"
	"fmt"

	"github.com/jackzampolin/pagesmith/internal/pdfdoc"
)

// File is a PDF produced for the user to save.
type File struct {
	Name  string
	Data  []byte
	Pages int
}

// Load replaces the working document with data. On failure the previous
// document, if any, stays authoritative.
func (s *Session) Load(ctx context.Context, data []byte) error {
	end, err := s.begin("Loading PDF...")
	if err != nil {
		return err
	}
	defer end()
	if err := s.interrupted(ctx, ErrLoad, "Error loading PDF"); err != nil {
		return err
	}

	doc, err := pdfdoc.Load(s.codec, data)
	if err != nil {
		s.fail("Error loading PDF. Is it encrypted?", err)
		return err
	}

	s.install(doc)
	s.logger.Info("document loaded", "pages", doc.PageCount(), "bytes", len(data))
	s.notify(NoticeSuccess, "PDF loaded successfully")
	return nil
}

// Merge appends every page of data to the working document.
func (s *Session) Merge(ctx context.Context, data []byte) (int, error) {
	end, err := s.begin("Merging documents...")
	if err != nil {
		return 0, err
	}
	defer end()
	if err := s.interrupted(ctx, ErrMerge, "Error merging PDF."); err != nil {
		return 0, err
	}

	cur, err := s.requireDoc()
	if err != nil {
		return 0, err
	}

	other, err := pdfdoc.Load(s.codec, data)
	if err != nil {
		s.fail("Error merging PDF.", err)
		return 0, fmt.Errorf("%w: %w", ErrMerge, err)
	}

	next := cur.Clone()
	added, err := next.AppendPages(other, other.Indices())
	if err != nil {
		s.fail("Error merging PDF.", err)
		return 0, fmt.Errorf("%w: %w", ErrMerge, err)
	}

	s.install(next)
	s.logger.Info("document merged", "added", added, "pages", next.PageCount())
	s.notify(NoticeSuccess, fmt.Sprintf("Added %d pages", added))
	return added, nil
}

// Download serializes the working document.
func (s *Session) Download(ctx context.Context) (File, error) {
	end, err := s.begin("Generating PDF...")
	if err != nil {
		return File{}, err
	}
	defer end()
	if err := s.interrupted(ctx, ErrSave, "Error saving PDF"); err != nil {
		return File{}, err
	}

	doc, err := s.requireDoc()
	if err != nil {
		return File{}, err
	}

	data, err := doc.Serialize()
	if err != nil {
		s.fail("Error saving PDF", err)
		return File{}, err
	}

	s.notify(NoticeSuccess, "Download started!")
	return File{
		Name:  fmt.Sprintf("full_document_%d.pdf", s.now().UnixMilli()),
		Data:  data,
		Pages: doc.PageCount(),
	}, nil
}

// Extract builds a new PDF from the selected pages in ascending index order.
// The working document and the selection are left as they are.
func (s *Session) Extract(ctx context.Context) (File, error) {
	end, err := s.begin("Extracting pages...")
	if err != nil {
		return File{}, err
	}
	defer end()
	if err := s.interrupted(ctx, ErrExtract, "Extraction failed"); err != nil {
		return File{}, err
	}

	s.mu.RLock()
	doc := s.doc
	indices := s.sel.SortedIndices()
	valid := doc != nil && s.sel.Valid(doc.PageCount())
	s.mu.RUnlock()

	if doc == nil {
		return File{}, ErrNoDocument
	}
	if len(indices) == 0 {
		return File{}, ErrEmptySelection
	}
	if !valid {
		err := fmt.Errorf("%w: selection %v outside %d pages", ErrIndex, indices, doc.PageCount())
		s.fail("Extraction failed", err)
		return File{}, fmt.Errorf("%w: %w", ErrExtract, err)
	}

	out := pdfdoc.New(s.codec)
	if _, err := out.AppendPages(doc, indices); err != nil {
		s.fail("Extraction failed", err)
		return File{}, fmt.Errorf("%w: %w", ErrExtract, err)
	}
	data, err := out.Serialize()
	if err != nil {
		s.fail("Extraction failed", err)
		return File{}, fmt.Errorf("%w: %w", ErrExtract, err)
	}

	s.logger.Info("pages extracted", "pages", indices)
	s.notify(NoticeSuccess, "Pages extracted & downloaded")
	return File{
		Name:  fmt.Sprintf("extracted_pages_%d.pdf", s.now().UnixMilli()),
		Data:  data,
		Pages: len(indices),
	}, nil
}
