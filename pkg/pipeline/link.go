package pipeline

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-jobopts/pkg/pipeline/model"
)

type linkConfig struct {
	from string
	to   string
}

// LinkOption selects handles when a descriptor has more than one in a direction.
type LinkOption func(c *linkConfig)

// FromHandle selects the writer handle of the producer.
func FromHandle(name string) LinkOption {
	return func(c *linkConfig) {
		c.from = name
	}
}

// ToHandle selects the reader handle of the consumer.
func ToHandle(name string) LinkOption {
	return func(c *linkConfig) {
		c.to = name
	}
}

// Link binds a writer handle of producer and a reader handle of consumer to the same path,
// so that consumer reads what producer writes.
func Link(path string, producer, consumer *Descriptor, opts ...LinkOption) error {
	if producer == nil || consumer == nil {
		return ErrDescriptorMustBeSet
	}

	if path == "" {
		return ErrEmptyPath
	}

	cfg := &linkConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	out, err := producer.selectHandle(model.Writer, cfg.from)
	if err != nil {
		return errors.Wrapf(err, "unable to link %s to %s", producer.name, consumer.name)
	}

	in, err := consumer.selectHandle(model.Reader, cfg.to)
	if err != nil {
		return errors.Wrapf(err, "unable to link %s to %s", producer.name, consumer.name)
	}

	producer.handles[out].Path = path
	consumer.handles[in].Path = path

	return nil
}

func (d *Descriptor) selectHandle(dir model.Direction, name string) (int, error) {
	found := -1

	for i, h := range d.handles {
		if h.Direction != dir {
			continue
		}

		if name != "" {
			if h.Name == name {
				return i, nil
			}

			continue
		}

		if found >= 0 {
			return -1, errors.Wrapf(ErrAmbiguousHandle, "%s has several %s handles", d.name, dir)
		}

		found = i
	}

	if found < 0 {
		if name != "" {
			return -1, errors.Wrapf(ErrHandleNotFound, "%s has no %s handle %q", d.name, dir, name)
		}

		return -1, errors.Wrapf(ErrHandleNotFound, "%s has no %s handle", d.name, dir)
	}

	return found, nil
}
