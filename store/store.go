// Package store persists consignment data and witness-oracle answers in a
// local bbolt database, giving a CLI or long-running host a durable cache
// instead of re-fetching from the network or an indexer on every run.
package store

import (
	"encoding/binary"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/rgb-wg/rgb-core-go/anchor"
	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/witness"
)

var (
	bucketSchemas    = []byte("schemas_by_id")
	bucketGenesis    = []byte("genesis_by_contract_id")
	bucketOperations = []byte("operations_by_id")
	bucketBundles    = []byte("bundles_by_id")
	bucketAnchors    = []byte("anchors_by_bundle_id")
	bucketOpWitness  = []byte("op_witness_txid_by_op_id")
)

// ConsignmentCache is a content-addressed, bbolt-backed store for the raw
// wire-encoded blobs a validation.Consignment hands out: schema, genesis,
// operations, bundles, and anchors. Keys are the domain's own commit-ids, so
// the cache doubles as a dedup index — re-storing an already-known id is a
// no-op overwrite of identical bytes. The store holds opaque blobs rather
// than decoded structs: decoding into operation.Genesis/Transition/Extension
// etc. is the embedder's job: there is no single mandated reversible wire
// format beyond the one-way commit-encoding this repo's commitment
// package implements.
type ConsignmentCache struct {
	db *bolt.DB
}

// OpenConsignmentCache opens (creating if absent) a bbolt database at path
// and ensures every bucket exists via CreateBucketIfNotExists on open.
func OpenConsignmentCache(path string) (*ConsignmentCache, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}
	c := &ConsignmentCache{db: bdb}
	if err := c.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketSchemas, bucketGenesis, bucketOperations, bucketBundles, bucketAnchors, bucketOpWitness} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return c, nil
}

func (c *ConsignmentCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *ConsignmentCache) PutSchema(id operation.SchemaId, blob []byte) error {
	return c.put(bucketSchemas, id[:], blob)
}

func (c *ConsignmentCache) GetSchema(id operation.SchemaId) ([]byte, bool, error) {
	return c.get(bucketSchemas, id[:])
}

func (c *ConsignmentCache) PutGenesis(contractId operation.ContractId, blob []byte) error {
	return c.put(bucketGenesis, contractId[:], blob)
}

func (c *ConsignmentCache) GetGenesis(contractId operation.ContractId) ([]byte, bool, error) {
	return c.get(bucketGenesis, contractId[:])
}

func (c *ConsignmentCache) PutOperation(id operation.OpId, blob []byte) error {
	return c.put(bucketOperations, id[:], blob)
}

func (c *ConsignmentCache) GetOperation(id operation.OpId) ([]byte, bool, error) {
	return c.get(bucketOperations, id[:])
}

func (c *ConsignmentCache) PutBundle(id anchor.BundleId, blob []byte) error {
	return c.put(bucketBundles, id[:], blob)
}

func (c *ConsignmentCache) GetBundle(id anchor.BundleId) ([]byte, bool, error) {
	return c.get(bucketBundles, id[:])
}

// BundleIds lists every bundle id this cache currently holds, in ascending
// key order — bbolt iterates buckets in byte order already, so no separate
// sort is needed, but callers relying on determinism get it either way.
func (c *ConsignmentCache) BundleIds() ([]anchor.BundleId, error) {
	var out []anchor.BundleId
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBundles).ForEach(func(k, _ []byte) error {
			var id anchor.BundleId
			copy(id[:], k)
			out = append(out, id)
			return nil
		})
	})
	return out, err
}

// anchorRecord prefixes the witness txid onto the anchor blob so one bbolt
// value carries both halves of validation.Consignment's Anchor(bundleId)
// return shape.
func (c *ConsignmentCache) PutAnchor(bundleId anchor.BundleId, witnessTxid [32]byte, blob []byte) error {
	val := make([]byte, 32+len(blob))
	copy(val[:32], witnessTxid[:])
	copy(val[32:], blob)
	return c.put(bucketAnchors, bundleId[:], val)
}

func (c *ConsignmentCache) GetAnchor(bundleId anchor.BundleId) (witnessTxid [32]byte, blob []byte, ok bool, err error) {
	val, found, err := c.get(bucketAnchors, bundleId[:])
	if err != nil || !found {
		return witnessTxid, nil, false, err
	}
	if len(val) < 32 {
		return witnessTxid, nil, false, fmt.Errorf("store: truncated anchor record for bundle %x", bundleId)
	}
	copy(witnessTxid[:], val[:32])
	return witnessTxid, append([]byte(nil), val[32:]...), true, nil
}

func (c *ConsignmentCache) PutOpWitnessId(id operation.OpId, witnessTxid [32]byte) error {
	return c.put(bucketOpWitness, id[:], witnessTxid[:])
}

func (c *ConsignmentCache) GetOpWitnessId(id operation.OpId) ([32]byte, bool, error) {
	val, ok, err := c.get(bucketOpWitness, id[:])
	if err != nil || !ok {
		return [32]byte{}, false, err
	}
	var out [32]byte
	copy(out[:], val)
	return out, true, nil
}

func (c *ConsignmentCache) put(bucket, key, val []byte) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key, val)
	})
}

func (c *ConsignmentCache) get(bucket, key []byte) ([]byte, bool, error) {
	var out []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(key)
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

var bucketWitnessOrd = []byte("witness_ord_by_txid")

// WitnessOracleCache is a bbolt-backed witness.Oracle: it answers Status
// from a local cache populated by Put, falling back to Unresolved rather
// than reaching out to a transaction indexer itself — fetching the answer
// from wherever it ultimately comes from is the embedder's job; this type
// only makes that answer durable across runs.
type WitnessOracleCache struct {
	db *bolt.DB
}

// ErrUnresolved is returned by Status when no cached answer exists yet for
// the given txid.
type ErrUnresolved struct{ Txid [32]byte }

func (e *ErrUnresolved) Error() string { return fmt.Sprintf("store: witness status unresolved for %x", e.Txid) }

func OpenWitnessOracleCache(path string) (*WitnessOracleCache, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}
	w := &WitnessOracleCache{db: bdb}
	if err := w.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketWitnessOrd)
		return err
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return w, nil
}

func (w *WitnessOracleCache) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

// Put records the oracle's answer for txid, overwriting any prior entry —
// a witness transaction's confirmation status only ever moves forward
// (Tentative -> Final, or either -> Archived on reorg), so later writes are
// always authoritative.
func (w *WitnessOracleCache) Put(txid [32]byte, ord witness.WitnessOrd) error {
	val := encodeWitnessOrd(ord)
	return w.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWitnessOrd).Put(txid[:], val)
	})
}

// Status implements witness.Oracle.
func (w *WitnessOracleCache) Status(txid [32]byte) (witness.WitnessOrd, error) {
	var ord witness.WitnessOrd
	var found bool
	err := w.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketWitnessOrd).Get(txid[:])
		if v == nil {
			return nil
		}
		decoded, err := decodeWitnessOrd(v)
		if err != nil {
			return err
		}
		ord = decoded
		found = true
		return nil
	})
	if err != nil {
		return witness.WitnessOrd{}, err
	}
	if !found {
		return witness.WitnessOrd{}, &ErrUnresolved{Txid: txid}
	}
	return ord, nil
}

// Known lists every txid this cache has an answer for, useful for an
// embedder that wants to bulk-refresh Tentative entries against a newer
// indexer snapshot.
func (w *WitnessOracleCache) Known() ([][32]byte, error) {
	var out [][32]byte
	err := w.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWitnessOrd).ForEach(func(k, _ []byte) error {
			var id [32]byte
			copy(id[:], k)
			out = append(out, id)
			return nil
		})
	})
	sort.Slice(out, func(i, j int) bool {
		for b := range out[i] {
			if out[i][b] != out[j][b] {
				return out[i][b] < out[j][b]
			}
		}
		return false
	})
	return out, err
}

func encodeWitnessOrd(ord witness.WitnessOrd) []byte {
	out := make([]byte, 5)
	out[0] = byte(ord.Kind)
	binary.BigEndian.PutUint32(out[1:], ord.Height)
	return out
}

func decodeWitnessOrd(b []byte) (witness.WitnessOrd, error) {
	if len(b) != 5 {
		return witness.WitnessOrd{}, fmt.Errorf("store: truncated witness ord record")
	}
	return witness.WitnessOrd{
		Kind:   witness.WitnessOrdKind(b[0]),
		Height: binary.BigEndian.Uint32(b[1:]),
	}, nil
}
