package stripemap

import (
	"errors"
	"log"
	"os"

	"stripemap/dumpfile"
	"stripemap/util"
)

var (
	// ErrNilCodec a dump or restore was attempted without a value codec.
	ErrNilCodec = errors.New("stripemap: value codec must not be nil")
	// ErrCorruptRecord re-exported so callers classify dump corruption
	// without importing dumpfile.
	ErrCorruptRecord = dumpfile.ErrCorruptRecord
	// ErrDumpFileFull the snapshot does not fit in Config.DumpFileSize.
	ErrDumpFileFull = dumpfile.ErrFileFull
)

// ValueEncoder turns a value into its dump representation. The value type is
// opaque to the map, so the codec is caller-supplied.
type ValueEncoder[V any] func(value V) ([]byte, error)

// ValueDecoder is the inverse of ValueEncoder.
type ValueDecoder[V any] func(data []byte) (V, error)

// DumpSnapshot writes a Snapshot of the map to a dump file at path, one
// crc-checked record per entry in ascending key order. The dump carries
// snapshot semantics: per-partition consistency, no whole-map atomicity.
// The file is written to a temporary sibling and renamed into place, so an
// existing dump at path is either fully replaced or left untouched; no
// partial file survives a failure. A snapshot exceeding Config.DumpFileSize
// fails with ErrDumpFileFull rather than dumping something a reader cannot
// fully map.
func (m *Map[K, V]) DumpSnapshot(path string, encode ValueEncoder[V]) error {
	if encode == nil {
		return ErrNilCodec
	}
	snap := m.Snapshot()

	tmpPath := path + ".tmp"
	f, err := dumpfile.Open(tmpPath, m.dumpFileSize, dumpfile.FileIO)
	if err != nil {
		return err
	}
	discard := func(err error) error {
		if derr := f.Delete(); derr != nil {
			log.Printf("stripemap: remove partial dump file: %v", derr)
		}
		return err
	}

	var werr error
	snap.Ascend(func(key K, value V) bool {
		var data []byte
		if data, werr = encode(value); werr != nil {
			return false
		}
		werr = f.WriteRecord(&dumpfile.Record{Key: util.KeyToByte(key), Value: data})
		return werr == nil
	})
	if werr != nil {
		return discard(werr)
	}

	if err := f.Sync(); err != nil {
		return discard(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// RestoreSnapshot replays the records of a dump file at path into the map
// through the normal upsert path and returns the number of entries restored.
// Existing entries for dumped keys are overwritten; entries for other keys
// are left alone. The file is read through a memory mapping sized from the
// file itself, so restore does not depend on the writer's configuration.
func (m *Map[K, V]) RestoreSnapshot(path string, decode ValueDecoder[V]) (int, error) {
	if decode == nil {
		return 0, ErrNilCodec
	}

	stat, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if stat.Size() == 0 {
		return 0, nil
	}

	f, err := dumpfile.Open(path, stat.Size(), dumpfile.MMapIO)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("stripemap: close dump file: %v", cerr)
		}
	}()

	var offset int64
	restored := 0
	for {
		rec, size, err := f.ReadRecord(offset)
		if errors.Is(err, dumpfile.ErrEndOfFile) {
			return restored, nil
		}
		if err != nil {
			return restored, err
		}
		value, err := decode(rec.Value)
		if err != nil {
			return restored, err
		}
		m.Set(util.ByteToKey[K](rec.Key), value)
		restored++
		offset += int64(size)
	}
}
