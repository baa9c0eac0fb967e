package service

import (
	"context"
	"math"

	"github.com/Ayush22-04/xetor-backen/internal/codec"
	"github.com/Ayush22-04/xetor-backen/internal/collections"
	"github.com/Ayush22-04/xetor-backen/internal/document"
	"github.com/Ayush22-04/xetor-backen/internal/document/repository"
	"github.com/Ayush22-04/xetor-backen/internal/document/resolver"
	"github.com/Ayush22-04/xetor-backen/pkg/logger"
)

var (
	ErrInvalidCollection = repository.ErrInvalidCollection
	ErrInvalidID         = repository.ErrInvalidID
	ErrNotFound          = repository.ErrNotFound
	ErrStoreUnavailable  = repository.ErrStoreUnavailable
	ErrValidation        = collections.ErrValidation
)

// ValidationError carries per-field validation messages.
type ValidationError = collections.ValidationError

// Notifier is told about every contact message created through the public API.
// It reports whether the acknowledgment went out and must not panic.
type Notifier interface {
	ContactReceived(ctx context.Context, msg document.Document) bool
}

// CreateOptions tunes Create.
type CreateOptions struct {
	// SendEmail enables the contact-message notification.
	SendEmail bool
}

// CreateResult is returned by Create. EmailSent is set for contact messages only.
type CreateResult struct {
	ID        string
	EmailSent *bool
}

// CollectionCount is one row of the admin overview.
type CollectionCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Service implements the document operations behind the public and admin APIs.
type Service struct {
	repo     repository.Repository
	resolver *resolver.Resolver
	notifier Notifier
}

// New wires the service; notifier may be nil.
func New(repo repository.Repository, notifier Notifier) *Service {
	return &Service{repo: repo, resolver: resolver.New(repo), notifier: notifier}
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func publicKind(name string) (*collections.Descriptor, error) {
	d, ok := collections.Public(name)
	if !ok {
		return nil, ErrInvalidCollection
	}
	return d, nil
}

func adminKind(name string) (*collections.Descriptor, error) {
	d, ok := collections.Admin(name)
	if !ok {
		return nil, ErrInvalidCollection
	}
	return d, nil
}

func (s *Service) list(ctx context.Context, d *collections.Descriptor, f repository.Filter, limit int64) ([]map[string]interface{}, error) {
	docs, err := s.repo.List(ctx, d.Storage, f, limit)
	if err != nil {
		return nil, err
	}
	s.resolver.Resolve(ctx, docs, d.References...)
	return codec.NormalizeDocuments(docs), nil
}

func (s *Service) get(ctx context.Context, d *collections.Descriptor, id string) (map[string]interface{}, error) {
	doc, err := s.repo.Get(ctx, d.Storage, id)
	if err != nil {
		return nil, err
	}
	s.resolver.Resolve(ctx, []document.Document{doc}, d.References...)
	return codec.NormalizeDocument(doc), nil
}

// List returns every document of a public collection, normalized and resolved.
func (s *Service) List(ctx context.Context, name string) ([]map[string]interface{}, error) {
	d, err := publicKind(name)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, d, nil, 0)
}

// Get returns one document of a public collection.
func (s *Service) Get(ctx context.Context, name, id string) (map[string]interface{}, error) {
	d, err := publicKind(name)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, d, id)
}

// Create validates and stores a document. For contact messages the notifier
// runs after the write succeeded; its outcome never changes the write.
func (s *Service) Create(ctx context.Context, name string, fields map[string]interface{}, opts CreateOptions) (CreateResult, error) {
	d, err := publicKind(name)
	if err != nil {
		return CreateResult{}, err
	}
	doc, err := d.Prepare(fields, false)
	if err != nil {
		return CreateResult{}, err
	}
	id, err := s.repo.Create(ctx, d.Storage, doc)
	if err != nil {
		return CreateResult{}, err
	}
	res := CreateResult{ID: id}
	if d.Name == collections.ContactMessages {
		sent := false
		if opts.SendEmail && s.notifier != nil {
			sent = s.notifyContact(ctx, d, id, doc)
		}
		res.EmailSent = &sent
	}
	return res, nil
}

func (s *Service) notifyContact(ctx context.Context, d *collections.Descriptor, id string, doc document.Document) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("contact notification panicked: %v", r)
			sent = false
		}
	}()
	msg := doc.Clone()
	msg["id"] = id
	s.resolver.Resolve(ctx, []document.Document{msg}, d.References...)
	return s.notifier.ContactReceived(ctx, msg)
}

// Update merges fields into a public-collection document.
func (s *Service) Update(ctx context.Context, name, id string, fields map[string]interface{}) error {
	d, err := publicKind(name)
	if err != nil {
		return err
	}
	doc, err := d.Prepare(fields, true)
	if err != nil {
		return err
	}
	return s.update(ctx, d, id, doc)
}

func (s *Service) update(ctx context.Context, d *collections.Descriptor, id string, doc document.Document) error {
	matched, err := s.repo.Update(ctx, d.Storage, id, doc)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// Delete removes a public-collection document; a missing document is not an error.
func (s *Service) Delete(ctx context.Context, name, id string) error {
	d, err := publicKind(name)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, d.Storage, id)
	return err
}

// Popular lists documents of categories or products flagged is_popular.
func (s *Service) Popular(ctx context.Context, name string) ([]map[string]interface{}, error) {
	if name != collections.Categories && name != collections.Products {
		return nil, ErrInvalidCollection
	}
	d, err := publicKind(name)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, d, repository.Filter{collections.FieldIsPopular: true}, 0)
}

// PopularCollections returns all categories plus the popular products.
func (s *Service) PopularCollections(ctx context.Context) (map[string]interface{}, error) {
	cats, err := s.List(ctx, collections.Categories)
	if err != nil {
		return nil, err
	}
	prods, err := s.Popular(ctx, collections.Products)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		collections.Categories: cats,
		collections.Products:   prods,
	}, nil
}

// AdminCounts returns every admin-manageable collection with its document count.
// A failing count is reported as zero.
func (s *Service) AdminCounts(ctx context.Context) []CollectionCount {
	names := collections.AdminNames()
	out := make([]CollectionCount, 0, len(names))
	for _, name := range names {
		d, _ := collections.Admin(name)
		n, err := s.repo.Count(ctx, d.Storage, nil)
		if err != nil {
			logger.Warnf("count %s: %v", d.Storage, err)
			n = 0
		}
		out = append(out, CollectionCount{Name: name, Count: n})
	}
	return out
}

// AdminList returns up to repository.AdminListLimit documents with references resolved.
func (s *Service) AdminList(ctx context.Context, name string) ([]map[string]interface{}, error) {
	d, err := adminKind(name)
	if err != nil {
		return nil, err
	}
	out, err := s.list(ctx, d, nil, repository.AdminListLimit)
	if err != nil {
		return nil, err
	}
	for _, doc := range out {
		coerceRating(doc)
	}
	return out, nil
}

// AdminGet returns one document of an admin-manageable collection.
func (s *Service) AdminGet(ctx context.Context, name, id string) (map[string]interface{}, error) {
	d, err := adminKind(name)
	if err != nil {
		return nil, err
	}
	doc, err := s.get(ctx, d, id)
	if err != nil {
		return nil, err
	}
	coerceRating(doc)
	return doc, nil
}

// AdminCreate stores fields already parsed from an admin form. No notification is sent.
func (s *Service) AdminCreate(ctx context.Context, name string, fields document.Document) (string, error) {
	d, err := adminKind(name)
	if err != nil {
		return "", err
	}
	return s.repo.Create(ctx, d.Storage, fields)
}

// AdminUpdate merges parsed form fields into an existing document.
func (s *Service) AdminUpdate(ctx context.Context, name, id string, fields document.Document) error {
	d, err := adminKind(name)
	if err != nil {
		return err
	}
	return s.update(ctx, d, id, fields)
}

// AdminDelete removes a document, reporting ErrNotFound when it does not exist.
func (s *Service) AdminDelete(ctx context.Context, name, id string) error {
	d, err := adminKind(name)
	if err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, d.Storage, id); err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, d.Storage, id)
	return err
}

// coerceRating turns stored numeric ratings into plain integers for display.
func coerceRating(doc map[string]interface{}) {
	switch r := doc[collections.FieldRating].(type) {
	case int32:
		doc[collections.FieldRating] = int(r)
	case int64:
		doc[collections.FieldRating] = int(r)
	case float64:
		if r == math.Trunc(r) {
			doc[collections.FieldRating] = int(r)
		}
	}
}
