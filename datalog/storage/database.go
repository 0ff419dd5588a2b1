package storage

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mars-robotics/buildseq/datalog"
)

// Database provides the main API for reading and writing datoms. It wraps a
// BadgerStore with transaction bookkeeping; readers go through QueryBuilder
// (queries.go), which scans the EAVT/AEVT/AVET/VAET/TAEV indexes this package
// already maintains — there is no query compiler behind it.
type Database struct {
	store     *BadgerStore
	txCounter atomic.Uint64
	mu        sync.RWMutex
	activeTx  map[*Transaction]bool
	useTimeTx bool // Use time-based transaction IDs
}

// NewDatabase creates a new database with BadgerDB storage
func NewDatabase(path string) (*Database, error) {
	// Use Binary encoding explicitly (matches BadgerStore default)
	store, err := NewBadgerStore(path, NewKeyEncoder(BinaryStrategy))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return &Database{
		store:    store,
		activeTx: make(map[*Transaction]bool),
	}, nil
}

// NewDatabaseWithTimeTx creates a database that uses time-based transaction IDs
func NewDatabaseWithTimeTx(path string) (*Database, error) {
	db, err := NewDatabase(path)
	if err != nil {
		return nil, err
	}
	db.useTimeTx = true
	return db, nil
}

// NewTransaction starts a new write transaction
func (d *Database) NewTransaction() *Transaction {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx := &Transaction{
		db:       d,
		datoms:   make([]datalog.Datom, 0),
		retracts: make([]datalog.Datom, 0),
	}

	d.activeTx[tx] = true
	return tx
}

// Store returns the underlying store for direct access (debugging/testing)
func (d *Database) Store() *BadgerStore {
	return d.store
}

// Close closes the database
func (d *Database) Close() error {
	d.mu.Lock()
	active := make([]*Transaction, 0, len(d.activeTx))
	for tx := range d.activeTx {
		active = append(active, tx)
	}
	d.mu.Unlock()

	// Rollback any active transactions (Rollback takes d.mu itself)
	for _, tx := range active {
		tx.Rollback()
	}

	return d.store.Close()
}

// Transaction represents a write transaction
type Transaction struct {
	db       *Database
	datoms   []datalog.Datom
	retracts []datalog.Datom
	mu       sync.Mutex
	closed   bool
	txTime   *time.Time // Optional custom transaction time
}

// Add asserts a new datom
func (t *Transaction) Add(e datalog.Identity, a datalog.Keyword, v interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction is closed")
	}

	t.datoms = append(t.datoms, datalog.Datom{
		E:  e,
		A:  a,
		V:  v,
		Tx: 0, // Will be set on commit
	})

	return nil
}

// Retract removes a datom
func (t *Transaction) Retract(e datalog.Identity, a datalog.Keyword, v interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transaction is closed")
	}

	t.retracts = append(t.retracts, datalog.Datom{
		E:  e,
		A:  a,
		V:  v,
		Tx: 0, // Will be set on commit
	})

	return nil
}

// Commit commits the transaction
func (t *Transaction) Commit() (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, fmt.Errorf("transaction is closed")
	}

	// Get transaction ID (time-based or sequential)
	var txID uint64
	var txTime time.Time

	// Use custom time if provided, otherwise use current time
	if t.txTime != nil {
		txTime = *t.txTime
	} else {
		txTime = time.Now()
	}

	if t.db.useTimeTx {
		// Use nanosecond timestamp as transaction ID
		txID = uint64(txTime.UnixNano())
	} else {
		// Use sequential counter
		txID = t.db.txCounter.Add(1)
	}

	// Set transaction ID on all datoms
	for i := range t.datoms {
		t.datoms[i].Tx = txID
	}
	for i := range t.retracts {
		t.retracts[i].Tx = txID
	}

	// Apply retractions first
	if len(t.retracts) > 0 {
		if err := t.db.store.Retract(t.retracts); err != nil {
			return 0, fmt.Errorf("failed to retract datoms: %w", err)
		}
	}

	// Then apply assertions
	if len(t.datoms) > 0 {
		if err := t.db.store.Assert(t.datoms); err != nil {
			return 0, fmt.Errorf("failed to assert datoms: %w", err)
		}
	}

	// Add transaction metadata
	txEntity := datalog.NewIdentity(fmt.Sprintf("tx:%d", txID))
	txMetadata := []datalog.Datom{
		{
			E:  txEntity,
			A:  datalog.NewKeyword(":db/txInstant"),
			V:  txTime,
			Tx: txID,
		},
	}
	if err := t.db.store.Assert(txMetadata); err != nil {
		// Log but don't fail the transaction
		fmt.Printf("Warning: failed to write transaction metadata: %v\n", err)
	}

	// Clean up
	t.closed = true
	t.db.mu.Lock()
	delete(t.db.activeTx, t)
	t.db.mu.Unlock()

	return txID, nil
}

// Rollback aborts the transaction
func (t *Transaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	t.datoms = nil
	t.retracts = nil

	t.db.mu.Lock()
	delete(t.db.activeTx, t)
	t.db.mu.Unlock()

	return nil
}
