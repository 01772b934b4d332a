package sink

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// --------------------------------------------------------------------------
// File Format Constants
// --------------------------------------------------------------------------

const (
	logMagic   = "DRECLOG\x00" // File format identifier
	logVersion = 1             // Log file format version

	// block type tags
	blockSchema   uint8 = 0x01
	blockSnapshot uint8 = 0x02

	writerBufferSize = 1024 * 1024 // 1 MB buffer
)

// --------------------------------------------------------------------------
// Log File Sink
// --------------------------------------------------------------------------

// LogFileSink writes schemas and snapshots as length-prefixed blocks into a
// structured binary log file. The file starts with a magic string and a
// format version, followed by any number of schema and snapshot blocks in
// arrival order.
//
// Thread-safety: all methods may be called concurrently; block writes are
// serialized by an internal lock.
type LogFileSink struct {
	mu sync.Mutex
	f  *os.File
	bw *bufio.Writer
}

// NewLogFileSink creates (or truncates) the log file at path and writes the
// file header.
func NewLogFileSink(path string) (*LogFileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	bw := bufio.NewWriterSize(f, writerBufferSize)
	if _, err := bw.WriteString(logMagic); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write magic number: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(logVersion)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write version: %w", err)
	}

	Logger.Infof("log file sink opened: %s", path)
	return &LogFileSink{f: f, bw: bw}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see sink.ISink)
// --------------------------------------------------------------------------

func (s *LogFileSink) AddChannel(name string, schema Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := binary.Write(s.bw, binary.LittleEndian, blockSchema); err != nil {
		return fmt.Errorf("failed to write schema block tag: %w", err)
	}
	if err := writeBlob(s.bw, []byte(name)); err != nil {
		return fmt.Errorf("failed to write channel name: %w", err)
	}
	if err := writeBlob(s.bw, []byte(schema.String())); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return nil
}

func (s *LogFileSink) StoreSnapshot(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := binary.Write(s.bw, binary.LittleEndian, blockSnapshot); err != nil {
		return fmt.Errorf("failed to write snapshot block tag: %w", err)
	}
	if err := writeBlob(s.bw, []byte(snap.Channel)); err != nil {
		return fmt.Errorf("failed to write channel name: %w", err)
	}
	if err := binary.Write(s.bw, binary.LittleEndian, snap.TimestampNS); err != nil {
		return fmt.Errorf("failed to write timestamp: %w", err)
	}
	if err := writeBlob(s.bw, snap.Payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// Flush forces buffered blocks out to the file.
func (s *LogFileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bw.Flush()
}

func (s *LogFileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.bw.Flush(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("failed to flush log file: %w", err)
	}
	return s.f.Close()
}

// writeBlob writes a uint32 length prefix followed by the data
func writeBlob(w io.Writer, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// --------------------------------------------------------------------------
// Log File Reader
// --------------------------------------------------------------------------

// BlockType identifies the kind of a log file block.
type BlockType uint8

const (
	BlockTSchema   BlockType = BlockType(blockSchema)
	BlockTSnapshot BlockType = BlockType(blockSnapshot)
)

// Block is one decoded log file block. Schema is set for schema blocks,
// TimestampNS and Payload for snapshot blocks.
type Block struct {
	Type        BlockType
	Channel     string
	Schema      string
	TimestampNS int64
	Payload     []byte
}

// LogFileReader iterates over the blocks of a file written by LogFileSink.
// It is the companion needed to read recorded data back, e.g. for
// round-trip verification.
type LogFileReader struct {
	f  *os.File
	br *bufio.Reader
}

// OpenLogFile opens a log file and validates its header.
func OpenLogFile(path string) (*LogFileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	br := bufio.NewReaderSize(f, writerBufferSize)

	magicBytes := make([]byte, len(logMagic))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read magic number: %w", err)
	}
	if string(magicBytes) != logMagic {
		_ = f.Close()
		return nil, fmt.Errorf("invalid log file format (wrong magic number)")
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != logVersion {
		_ = f.Close()
		return nil, fmt.Errorf("unsupported log file version: %d", version)
	}

	return &LogFileReader{f: f, br: br}, nil
}

// Next returns the next block, or io.EOF after the last one.
func (r *LogFileReader) Next() (*Block, error) {
	var tag uint8
	if err := binary.Read(r.br, binary.LittleEndian, &tag); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read block tag: %w", err)
	}

	name, err := readBlob(r.br)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel name: %w", err)
	}

	block := &Block{Type: BlockType(tag), Channel: string(name)}
	switch tag {
	case blockSchema:
		schema, err := readBlob(r.br)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema: %w", err)
		}
		block.Schema = string(schema)
	case blockSnapshot:
		if err := binary.Read(r.br, binary.LittleEndian, &block.TimestampNS); err != nil {
			return nil, fmt.Errorf("failed to read timestamp: %w", err)
		}
		payload, err := readBlob(r.br)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		block.Payload = payload
	default:
		return nil, fmt.Errorf("unknown block tag: 0x%02x", tag)
	}
	return block, nil
}

func (r *LogFileReader) Close() error {
	return r.f.Close()
}

// readBlob reads a uint32 length prefix followed by the data
func readBlob(br *bufio.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(br, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(br, data); err != nil {
		return nil, err
	}
	return data, nil
}
