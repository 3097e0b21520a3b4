package pdfdoc_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jackzampolin/pagesmith/internal/pdfdoc"
	"github.com/jackzampolin/pagesmith/internal/pdfdoc/pdfdoctest"
)

func load(t *testing.T, codec pdfdoc.Codec, labels ...string) *pdfdoc.Document {
	t.Helper()
	doc, err := pdfdoc.Load(codec, pdfdoctest.Build(labels...))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return doc
}

func labelsOf(t *testing.T, doc *pdfdoc.Document) []string {
	t.Helper()
	labels, err := pdfdoctest.DocumentLabels(doc)
	if err != nil {
		t.Fatalf("DocumentLabels() error = %v", err)
	}
	return labels
}

func TestLoad(t *testing.T) {
	codec := pdfdoctest.New()

	t.Run("counts pages", func(t *testing.T) {
		doc := load(t, codec, "P0", "P1", "P2")
		if doc.PageCount() != 3 {
			t.Errorf("PageCount() = %d, want 3", doc.PageCount())
		}
	})

	t.Run("rejects corrupt input", func(t *testing.T) {
		_, err := pdfdoc.Load(codec, []byte("garbage"))
		if !errors.Is(err, pdfdoc.ErrLoad) {
			t.Errorf("Load() error = %v, want ErrLoad", err)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := pdfdoc.Load(codec, nil)
		if !errors.Is(err, pdfdoc.ErrLoad) {
			t.Errorf("Load() error = %v, want ErrLoad", err)
		}
	})

	t.Run("does not alias caller bytes", func(t *testing.T) {
		data := pdfdoctest.Build("P0", "P1")
		doc, err := pdfdoc.Load(codec, data)
		if err != nil {
			t.Fatal(err)
		}
		for i := range data {
			data[i] = 'x'
		}
		if got := labelsOf(t, doc); !reflect.DeepEqual(got, []string{"P0", "P1"}) {
			t.Errorf("labels = %v after caller mutated input", got)
		}
	})
}

func TestAppendPages(t *testing.T) {
	tests := []struct {
		name    string
		dst     []string
		src     []string
		indices []int
		want    []string
	}{
		{"into empty in given order", nil, []string{"A", "B", "C"}, []int{2, 0, 1}, []string{"C", "A", "B"}},
		{"onto existing", []string{"X"}, []string{"A", "B"}, []int{0, 1}, []string{"X", "A", "B"}},
		{"subset ascending", nil, []string{"A", "B", "C", "D"}, []int{1, 3}, []string{"B", "D"}},
		{"nothing", []string{"X"}, []string{"A"}, nil, []string{"X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec := pdfdoctest.New()
			dst := pdfdoc.New(codec)
			if len(tt.dst) > 0 {
				dst = load(t, codec, tt.dst...)
			}
			src := load(t, codec, tt.src...)

			n, err := dst.AppendPages(src, tt.indices)
			if err != nil {
				t.Fatalf("AppendPages() error = %v", err)
			}
			if n != len(tt.indices) {
				t.Errorf("appended = %d, want %d", n, len(tt.indices))
			}
			if dst.PageCount() != len(tt.want) {
				t.Errorf("PageCount() = %d, want %d", dst.PageCount(), len(tt.want))
			}
			if got := labelsOf(t, dst); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("labels = %v, want %v", got, tt.want)
			}
			if got := labelsOf(t, src); !reflect.DeepEqual(got, tt.src) {
				t.Errorf("source changed to %v", got)
			}
		})
	}
}

func TestAppendPages_Failures(t *testing.T) {
	codec := pdfdoctest.New()
	src := load(t, codec, "A", "B")
	dst := load(t, codec, "X")

	t.Run("out of range index", func(t *testing.T) {
		_, err := dst.AppendPages(src, []int{0, 2})
		if !errors.Is(err, pdfdoc.ErrIndex) {
			t.Errorf("error = %v, want ErrIndex", err)
		}
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := dst.AppendPages(src, []int{-1})
		if !errors.Is(err, pdfdoc.ErrIndex) {
			t.Errorf("error = %v, want ErrIndex", err)
		}
	})

	t.Run("copy failure leaves destination unchanged", func(t *testing.T) {
		codec.FailCollect(true)
		defer codec.FailCollect(false)

		_, err := dst.AppendPages(src, []int{0})
		if !errors.Is(err, pdfdoc.ErrCopy) {
			t.Errorf("error = %v, want ErrCopy", err)
		}
		if dst.PageCount() != 1 {
			t.Errorf("PageCount() = %d, want 1", dst.PageCount())
		}
	})

	t.Run("concat failure leaves destination unchanged", func(t *testing.T) {
		codec.FailConcat(true)
		defer codec.FailConcat(false)

		_, err := dst.AppendPages(src, []int{0})
		if !errors.Is(err, pdfdoc.ErrCopy) {
			t.Errorf("error = %v, want ErrCopy", err)
		}
		if got := labelsOf(t, dst); !reflect.DeepEqual(got, []string{"X"}) {
			t.Errorf("labels = %v, want [X]", got)
		}
	})
}

func TestAppendPages_SelfSource(t *testing.T) {
	codec := pdfdoctest.New()
	doc := load(t, codec, "A", "B")

	if _, err := doc.AppendPages(doc, []int{1}); err != nil {
		t.Fatalf("AppendPages() error = %v", err)
	}
	if got := labelsOf(t, doc); !reflect.DeepEqual(got, []string{"A", "B", "B"}) {
		t.Errorf("labels = %v", got)
	}
}

func TestRemovePage(t *testing.T) {
	codec := pdfdoctest.New()

	t.Run("removes middle page", func(t *testing.T) {
		doc := load(t, codec, "A", "B", "C")
		if err := doc.RemovePage(1); err != nil {
			t.Fatal(err)
		}
		if got := labelsOf(t, doc); !reflect.DeepEqual(got, []string{"A", "C"}) {
			t.Errorf("labels = %v", got)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		doc := load(t, codec, "A")
		if err := doc.RemovePage(1); !errors.Is(err, pdfdoc.ErrIndex) {
			t.Errorf("error = %v, want ErrIndex", err)
		}
		if doc.PageCount() != 1 {
			t.Errorf("PageCount() = %d, want 1", doc.PageCount())
		}
	})

	t.Run("last page leaves empty document", func(t *testing.T) {
		doc := load(t, codec, "A")
		if err := doc.RemovePage(0); err != nil {
			t.Fatal(err)
		}
		if doc.PageCount() != 0 {
			t.Errorf("PageCount() = %d, want 0", doc.PageCount())
		}
		if _, err := doc.Serialize(); !errors.Is(err, pdfdoc.ErrSave) {
			t.Errorf("Serialize() error = %v, want ErrSave", err)
		}
	})

	t.Run("codec failure leaves document unchanged", func(t *testing.T) {
		doc := load(t, codec, "A", "B")
		codec.FailRemove(true)
		defer codec.FailRemove(false)

		if err := doc.RemovePage(0); err == nil {
			t.Fatal("expected error")
		}
		if got := labelsOf(t, doc); !reflect.DeepEqual(got, []string{"A", "B"}) {
			t.Errorf("labels = %v", got)
		}
	})
}

func TestClone(t *testing.T) {
	codec := pdfdoctest.New()
	doc := load(t, codec, "A", "B")
	clone := doc.Clone()

	if err := clone.RemovePage(0); err != nil {
		t.Fatal(err)
	}
	if doc.PageCount() != 2 {
		t.Errorf("original PageCount() = %d, want 2", doc.PageCount())
	}
	if got := labelsOf(t, clone); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("clone labels = %v", got)
	}
}
