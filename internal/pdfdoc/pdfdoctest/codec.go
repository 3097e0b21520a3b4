// Package pdfdoctest provides an in-memory pdfdoc.Codec whose pages are
// plain-text labels, so tests can assert exact page order.
package pdfdoctest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackzampolin/pagesmith/internal/pdfdoc"
)

const header = "%FAKEPDF\n"

// ErrInjected is returned by operations armed with Fail*.
var ErrInjected = errors.New("injected failure")

// Build encodes labels as a fake document.
func Build(labels ...string) []byte {
	return []byte(header + strings.Join(labels, "\n"))
}

// Labels decodes a fake document.
func Labels(data []byte) ([]string, error) {
	if !bytes.HasPrefix(data, []byte(header)) {
		return nil, fmt.Errorf("not a fake pdf")
	}
	body := string(data[len(header):])
	if body == "" {
		return nil, nil
	}
	return strings.Split(body, "\n"), nil
}

// Codec is a fake pdfdoc.Codec. The Fail* switches make the next calls of
// that operation fail until reset.
type Codec struct {
	mu           sync.Mutex
	failCollect  bool
	failConcat   bool
	failRemove   bool
	collectCalls int
}

var _ pdfdoc.Codec = (*Codec)(nil)

// New returns a fake codec.
func New() *Codec {
	return &Codec{}
}

// FailCollect arms or disarms Collect failures.
func (c *Codec) FailCollect(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failCollect = on
}

// FailConcat arms or disarms Concat failures.
func (c *Codec) FailConcat(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failConcat = on
}

// FailRemove arms or disarms Remove failures.
func (c *Codec) FailRemove(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failRemove = on
}

// CollectCalls reports how many times Collect ran.
func (c *Codec) CollectCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collectCalls
}

func (c *Codec) Inspect(data []byte) (int, error) {
	labels, err := Labels(data)
	if err != nil {
		return 0, err
	}
	return len(labels), nil
}

func (c *Codec) Collect(data []byte, indices []int) ([]byte, error) {
	c.mu.Lock()
	c.collectCalls++
	fail := c.failCollect
	c.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}

	labels, err := Labels(data)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(labels) {
			return nil, fmt.Errorf("page %d out of range", idx)
		}
		out = append(out, labels[idx])
	}
	return Build(out...), nil
}

func (c *Codec) Concat(docs ...[]byte) ([]byte, error) {
	c.mu.Lock()
	fail := c.failConcat
	c.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}

	var all []string
	for _, d := range docs {
		labels, err := Labels(d)
		if err != nil {
			return nil, err
		}
		all = append(all, labels...)
	}
	return Build(all...), nil
}

func (c *Codec) Remove(data []byte, index int) ([]byte, error) {
	c.mu.Lock()
	fail := c.failRemove
	c.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}

	labels, err := Labels(data)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(labels) {
		return nil, fmt.Errorf("page %d out of range", index)
	}
	out := append(append([]string{}, labels[:index]...), labels[index+1:]...)
	return Build(out...), nil
}

// DocumentLabels serializes doc and decodes its labels.
func DocumentLabels(doc *pdfdoc.Document) ([]string, error) {
	if doc.PageCount() == 0 {
		return nil, nil
	}
	data, err := doc.Serialize()
	if err != nil {
		return nil, err
	}
	return Labels(data)
}
