package xsdtree

import (
	"fmt"
	"log/slog"

	"github.com/jacoelho/xsdtree/internal/locator"
	"github.com/jacoelho/xsdtree/internal/traversal"
)

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved(def int) int {
	if !o.set || o.value == 0 {
		return def
	}
	return o.value
}

// Options configures a flattening run. The zero value is valid.
type Options struct {
	follow              bool
	maxDepth            intOption
	neverFollow         []string
	controlAttribute    *string
	maxSequenceChildren intOption
	maxChoiceChildren   intOption
	logger              *slog.Logger
	cache               *Cache
}

type resolvedOptions struct {
	traversal traversal.Config
	cache     *Cache
}

// NewOptions returns a default, valid options value.
func NewOptions() Options {
	return Options{}
}

// Validate validates option values.
func (o Options) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithFollow controls whether references are searched across every loaded
// document. Without it only the root document is searched.
func (o Options) WithFollow(value bool) Options {
	o.follow = value
	return o
}

// WithMaxDepth sets the number of reserved locator slots (0 uses default).
func (o Options) WithMaxDepth(value int) Options {
	o.maxDepth = intOption{value: value, set: true}
	return o
}

// WithNeverFollow sets reference names that are treated as built-in types.
func (o Options) WithNeverFollow(names ...string) Options {
	o.neverFollow = append([]string(nil), names...)
	return o
}

// WithControlAttribute sets the attribute name merged into its owning
// element; an empty name disables the merge.
func (o Options) WithControlAttribute(name string) Options {
	o.controlAttribute = &name
	return o
}

// WithMaxSequenceChildren sets the sequence member limit (0 uses default).
func (o Options) WithMaxSequenceChildren(value int) Options {
	o.maxSequenceChildren = intOption{value: value, set: true}
	return o
}

// WithMaxChoiceChildren sets the choice member limit (0 uses default).
func (o Options) WithMaxChoiceChildren(value int) Options {
	o.maxChoiceChildren = intOption{value: value, set: true}
	return o
}

// WithLogger sets the logger used for debug tracing.
func (o Options) WithLogger(logger *slog.Logger) Options {
	o.logger = logger
	return o
}

// WithCache shares parsed documents between runs.
func (o Options) WithCache(cache *Cache) Options {
	o.cache = cache
	return o
}

func (o Options) withDefaults() (resolvedOptions, error) {
	limits := []struct {
		name string
		opt  intOption
	}{
		{"max depth", o.maxDepth},
		{"max sequence children", o.maxSequenceChildren},
		{"max choice children", o.maxChoiceChildren},
	}
	for _, l := range limits {
		if l.opt.set && l.opt.value < 0 {
			return resolvedOptions{}, fmt.Errorf("%s must be non-negative, got %d", l.name, l.opt.value)
		}
	}
	control := traversal.DefaultControlAttribute
	if o.controlAttribute != nil {
		control = *o.controlAttribute
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cache := o.cache
	if cache == nil {
		cache = NewCache()
	}
	return resolvedOptions{
		traversal: traversal.Config{
			Follow:              o.follow,
			NeverFollow:         o.neverFollow,
			MaxDepth:            o.maxDepth.resolved(locator.DefaultMaxDepth),
			ControlAttribute:    control,
			MaxSequenceChildren: o.maxSequenceChildren.resolved(traversal.DefaultMaxSequenceChildren),
			MaxChoiceChildren:   o.maxChoiceChildren.resolved(traversal.DefaultMaxChoiceChildren),
			Logger:              logger,
		},
		cache: cache,
	}, nil
}
