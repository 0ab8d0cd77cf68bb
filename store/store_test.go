package store

import (
	"path/filepath"
	"testing"

	"github.com/rgb-wg/rgb-core-go/anchor"
	"github.com/rgb-wg/rgb-core-go/operation"
	"github.com/rgb-wg/rgb-core-go/witness"
)

func TestConsignmentCachePutGet(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenConsignmentCache(filepath.Join(dir, "consignment.db"))
	if err != nil {
		t.Fatalf("OpenConsignmentCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	var schemaId operation.SchemaId
	schemaId[0] = 1
	if err := c.PutSchema(schemaId, []byte("schema-blob")); err != nil {
		t.Fatalf("PutSchema: %v", err)
	}
	got, ok, err := c.GetSchema(schemaId)
	if err != nil || !ok {
		t.Fatalf("GetSchema: ok=%v err=%v", ok, err)
	}
	if string(got) != "schema-blob" {
		t.Fatalf("got %q", got)
	}

	var opId operation.OpId
	opId[0] = 2
	if err := c.PutOperation(opId, []byte("op-blob")); err != nil {
		t.Fatalf("PutOperation: %v", err)
	}
	if _, ok, err := c.GetOperation(opId); err != nil || !ok {
		t.Fatalf("GetOperation: ok=%v err=%v", ok, err)
	}

	var bundleId anchor.BundleId
	bundleId[0] = 3
	if err := c.PutBundle(bundleId, []byte("bundle-blob")); err != nil {
		t.Fatalf("PutBundle: %v", err)
	}
	ids, err := c.BundleIds()
	if err != nil {
		t.Fatalf("BundleIds: %v", err)
	}
	if len(ids) != 1 || ids[0] != bundleId {
		t.Fatalf("expected one bundle id, got %v", ids)
	}

	var witnessTxid [32]byte
	witnessTxid[0] = 0xaa
	if err := c.PutAnchor(bundleId, witnessTxid, []byte("anchor-blob")); err != nil {
		t.Fatalf("PutAnchor: %v", err)
	}
	gotTxid, gotBlob, ok, err := c.GetAnchor(bundleId)
	if err != nil || !ok {
		t.Fatalf("GetAnchor: ok=%v err=%v", ok, err)
	}
	if gotTxid != witnessTxid || string(gotBlob) != "anchor-blob" {
		t.Fatalf("anchor round-trip mismatch: txid=%x blob=%q", gotTxid, gotBlob)
	}
}

func TestConsignmentCacheMissReturnsNotOk(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenConsignmentCache(filepath.Join(dir, "consignment.db"))
	if err != nil {
		t.Fatalf("OpenConsignmentCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	var missing operation.OpId
	missing[0] = 0xff
	if _, ok, err := c.GetOperation(missing); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestWitnessOracleCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := OpenWitnessOracleCache(filepath.Join(dir, "witness.db"))
	if err != nil {
		t.Fatalf("OpenWitnessOracleCache: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	var txid [32]byte
	txid[0] = 7
	if _, err := w.Status(txid); err == nil {
		t.Fatalf("expected ErrUnresolved before any Put")
	}

	ord := witness.WitnessOrd{Kind: witness.Final, Height: 800000}
	if err := w.Put(txid, ord); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := w.Status(txid)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got != ord {
		t.Fatalf("got %+v want %+v", got, ord)
	}

	known, err := w.Known()
	if err != nil {
		t.Fatalf("Known: %v", err)
	}
	if len(known) != 1 || known[0] != txid {
		t.Fatalf("expected one known txid, got %v", known)
	}
}

func TestWitnessOracleCacheOverwriteAdvancesStatus(t *testing.T) {
	dir := t.TempDir()
	w, err := OpenWitnessOracleCache(filepath.Join(dir, "witness.db"))
	if err != nil {
		t.Fatalf("OpenWitnessOracleCache: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	var txid [32]byte
	txid[0] = 9
	_ = w.Put(txid, witness.WitnessOrd{Kind: witness.Tentative})
	_ = w.Put(txid, witness.WitnessOrd{Kind: witness.Final, Height: 123})

	got, err := w.Status(txid)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got.Kind != witness.Final || got.Height != 123 {
		t.Fatalf("expected overwritten Final status, got %+v", got)
	}
}
