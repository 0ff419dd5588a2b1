package graph

import (
	"context"
	"time"

	"github.com/mars-robotics/buildseq/datalog"
	"github.com/mars-robotics/buildseq/datalog/storage"
	"github.com/mars-robotics/buildseq/internal/apperr"
)

// DefaultConnectTimeout mirrors the original driver's 10-second connection
// timeout (spec §5): the graph store must answer before a request is
// allowed to block on it any longer.
const DefaultConnectTimeout = 10 * time.Second

// Driver owns the badger-backed property graph store and answers the four
// area/state lookups. It is safe for concurrent use by multiple in-flight
// requests (spec §5: each request owns only its own solver state).
type Driver struct {
	db      *storage.Database
	qb      *storage.QueryBuilder
	timeout time.Duration
}

// Open opens (or creates) the graph store at path, failing with
// db/not-reachable if it cannot be opened within timeout. A timeout <= 0
// uses DefaultConnectTimeout.
func Open(ctx context.Context, path string, timeout time.Duration) (*Driver, error) {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type openResult struct {
		db  *storage.Database
		err error
	}
	done := make(chan openResult, 1)
	go func() {
		db, err := storage.NewDatabase(path)
		done <- openResult{db, err}
	}()

	select {
	case <-ctx.Done():
		return nil, apperr.New(apperr.KindDBNotReachable, []string{"graph.Open"},
			"graph store did not open within %s", timeout)
	case res := <-done:
		if res.err != nil {
			return nil, apperr.New(apperr.KindDBNotReachable, []string{"graph.Open"},
				"graph store open failed: %s", res.err)
		}
		return &Driver{
			db:      res.db,
			qb:      storage.NewQueryBuilder(res.db.Store(), nil),
			timeout: timeout,
		}, nil
	}
}

// Close releases the underlying store.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Transaction exposes the underlying database's write transactions, used by
// tests to seed a Driver's store directly.
func (d *Driver) Transaction() *storage.Transaction {
	return d.db.NewTransaction()
}

// checkCancel is the only place a lookup checks for cancellation — at the
// I/O boundary, before the scan, not mid-traversal (spec §5).
func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return apperr.New(apperr.KindDBNotReachable, []string{"graph"}, "context canceled: %s", ctx.Err())
	default:
		return nil
	}
}

func identityEquals(v datalog.Value, id datalog.Identity) bool {
	ref, ok := v.(datalog.Identity)
	return ok && ref == id
}

func stringEquals(v datalog.Value, want string) bool {
	s, ok := v.(string)
	return ok && s == want
}

func asString(v datalog.Value) string {
	s, _ := v.(string)
	return s
}

func asFloat(v datalog.Value) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

// findEntityByUID scans every datom carrying uidAttr and returns the entity
// whose value equals uid.
func (d *Driver) findEntityByUID(uidAttr datalog.Keyword, uid string) (datalog.Identity, bool, error) {
	datoms, err := d.qb.GetAttribute(uidAttr)
	if err != nil {
		return datalog.Identity{}, false, apperr.Wrap("graph.findEntityByUID", err)
	}
	for _, dm := range datoms {
		if stringEquals(dm.V, uid) {
			return dm.E, true, nil
		}
	}
	return datalog.Identity{}, false, nil
}

// entityAttrs returns entity's attributes keyed by keyword string.
func (d *Driver) entityAttrs(entity datalog.Identity) (map[string]datalog.Value, error) {
	datoms, err := d.qb.GetEntity(entity)
	if err != nil {
		return nil, apperr.Wrap("graph.entityAttrs", err)
	}
	attrs := make(map[string]datalog.Value, len(datoms))
	for _, dm := range datoms {
		attrs[dm.A.String()] = dm.V
	}
	return attrs, nil
}

// linksTo scans linkAttr (e.g. attrPrecondAction) for every link entity
// pointing at owner, returning the link entities found.
func (d *Driver) linksTo(linkAttr datalog.Keyword, owner datalog.Identity) ([]datalog.Identity, error) {
	datoms, err := d.qb.GetAttribute(linkAttr)
	if err != nil {
		return nil, apperr.Wrap("graph.linksTo", err)
	}
	var links []datalog.Identity
	for _, dm := range datoms {
		if identityEquals(dm.V, owner) {
			links = append(links, dm.E)
		}
	}
	return links, nil
}
