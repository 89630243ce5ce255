package lineage

import (
	"slices"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// CreationListener is called synchronously whenever a category is created,
// before the category is returned to any caller.
type CreationListener func(c *Category)

// Observer receives engine events. internal/metrics provides a Prometheus
// implementation.
type Observer interface {
	ObserveLinearization(p Policy, size int)
	ObserveDispatch(key string, attempts int, err error)
}

// Categorization owns a hierarchy of categories: its root, the default
// bottom-up and top-down policies, and the creation listeners.
//
// A Categorization performs no locking. Linearization and property
// resolution only read and may run concurrently as long as nothing creates
// categories or writes properties at the same time. Lookup-or-create in the
// adapters must be serialized by the caller when used from several
// goroutines.
type Categorization struct {
	name      string
	rootLabel any
	root      *Category
	bottomUp  Policy
	topDown   Policy
	listeners []CreationListener
	all       []*Category
	logger    *zap.Logger
	observer  Observer
}

// Option configures a Categorization.
type Option func(*Categorization)

// WithName names the categorization in logs and snapshots.
func WithName(name string) Option {
	return func(cz *Categorization) {
		cz.name = name
	}
}

// WithRootLabel sets the label Root uses when it creates the root lazily.
func WithRootLabel(label any) Option {
	return func(cz *Categorization) {
		cz.rootLabel = label
	}
}

// WithBottomUp overrides the bottom-up policy.
func WithBottomUp(p Policy) Option {
	return func(cz *Categorization) {
		cz.bottomUp = p
	}
}

// WithTopDown overrides the top-down policy.
func WithTopDown(p Policy) Option {
	return func(cz *Categorization) {
		cz.topDown = p
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(cz *Categorization) {
		if l != nil {
			cz.logger = l
		}
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(cz *Categorization) {
		cz.observer = o
	}
}

// WithCreationListener registers fn before any category exists, so it also
// sees the root.
func WithCreationListener(fn CreationListener) Option {
	return func(cz *Categorization) {
		cz.listeners = append(cz.listeners, fn)
	}
}

// NewCategorization creates an empty categorization using DefaultBottomUp
// and DefaultTopDown unless overridden.
func NewCategorization(opts ...Option) *Categorization {
	cz := &Categorization{
		name:     "default",
		bottomUp: DefaultBottomUp,
		topDown:  DefaultTopDown,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cz)
	}
	cz.logger = cz.logger.With(zap.String("categorization", cz.name))
	return cz
}

// Name returns the categorization name.
func (cz *Categorization) Name() string { return cz.name }

// BottomUp returns the policy used for property resolution.
func (cz *Categorization) BottomUp() Policy { return cz.bottomUp }

// TopDown returns the policy used to enumerate descendants.
func (cz *Categorization) TopDown() Policy { return cz.topDown }

// Logger returns the categorization logger.
func (cz *Categorization) Logger() *zap.Logger { return cz.logger }

// Len returns the number of categories created so far.
func (cz *Categorization) Len() int { return len(cz.all) }

// Categories returns every category in creation order. Parents always
// precede their children.
func (cz *Categorization) Categories() []*Category { return slices.Clone(cz.all) }

// Root returns the root category, creating it with the configured root label
// on first access.
func (cz *Categorization) Root() *Category {
	if cz.root == nil {
		cz.root = cz.newCategory(cz.rootLabel, nil)
	}
	return cz.root
}

// HasRoot reports whether the root has been created.
func (cz *Categorization) HasRoot() bool { return cz.root != nil }

// CreateRoot creates the root with an explicit label. A categorization has
// exactly one root: a second call returns ErrDuplicateRoot.
func (cz *Categorization) CreateRoot(label any) (*Category, error) {
	if cz.root != nil {
		return nil, errors.Wrapf(ErrDuplicateRoot, "categorization %q: root is %s", cz.name, cz.root)
	}
	cz.root = cz.newCategory(label, nil)
	return cz.root, nil
}

// CreateChild creates a category with the given ordered parents. Parents
// must already belong to cz; duplicates are kept as declared.
func (cz *Categorization) CreateChild(label any, parents ...*Category) (*Category, error) {
	if len(parents) == 0 {
		return nil, errors.AssertionFailedf("create child %s: at least one parent is required", labelString(label))
	}
	for _, p := range parents {
		if p == nil {
			return nil, errors.AssertionFailedf("create child %s: nil parent", labelString(label))
		}
		if p.owner != cz {
			return nil, errors.AssertionFailedf("create child %s: parent %s belongs to categorization %q",
				labelString(label), p, p.owner.name)
		}
	}
	return cz.newCategory(label, slices.Clone(parents)), nil
}

// AddCreationListener registers fn for categories created from now on.
func (cz *Categorization) AddCreationListener(fn CreationListener) {
	cz.listeners = append(cz.listeners, fn)
}

func (cz *Categorization) newCategory(label any, parents []*Category) *Category {
	c := &Category{
		label:   label,
		owner:   cz,
		parents: parents,
		ordinal: len(cz.all),
	}
	seen := make(map[*Category]bool, len(parents))
	for _, p := range parents {
		if !seen[p] {
			seen[p] = true
			p.children = append(p.children, c)
		}
	}
	cz.all = append(cz.all, c)

	if ce := cz.logger.Check(zap.DebugLevel, "category created"); ce != nil {
		ce.Write(
			zap.Stringer("category", c),
			zap.Int("ordinal", c.ordinal),
			zap.Int("parents", len(parents)),
		)
	}
	for _, fn := range cz.listeners {
		fn(c)
	}
	return c
}

// mustCreateChild is used by adapters whose parents are always valid.
func (cz *Categorization) mustCreateChild(label any, parents ...*Category) *Category {
	c, err := cz.CreateChild(label, parents...)
	if err != nil {
		panic(err)
	}
	return c
}
