package flash

import (
	"os"

	"github.com/pkg/errors"
	"github.com/flashring/ringfs/ringerr"
)

// FileAdapter is a flash.Adapter backed by a regular file, one byte of file
// per byte of simulated flash. It is grounded on cannyls-go's nvm.FileNVM,
// but drops that type's block-alignment and O_DIRECT requirements: ringfs's
// adapter contract is byte-granular, not block-device granular.
type FileAdapter struct {
	file       *os.File
	sectorSize int32
}

// OpenFileAdapter opens (creating if absent) a file of exactly capacity
// bytes to back a flash partition of the given sector size. A freshly
// created file reads as all-ones, matching virgin NOR flash.
func OpenFileAdapter(path string, capacity int64, sectorSize int32) (*FileAdapter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "flash: open %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "flash: stat")
	}

	if info.Size() == 0 {
		blank := make([]byte, capacity)
		for i := range blank {
			blank[i] = 0xFF
		}
		if _, err := f.WriteAt(blank, 0); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "flash: initialize blank image")
		}
	} else if info.Size() != capacity {
		f.Close()
		return nil, errors.Wrapf(ringerr.ErrInvalidInput, "flash: existing file size %d != capacity %d", info.Size(), capacity)
	}

	return &FileAdapter{file: f, sectorSize: sectorSize}, nil
}

// Close releases the underlying file handle.
func (a *FileAdapter) Close() error {
	return a.file.Close()
}

func (a *FileAdapter) sectorBase(addr int32) int64 {
	return int64(addr/a.sectorSize) * int64(a.sectorSize)
}

// Erase implements Adapter.
func (a *FileAdapter) Erase(anyAddrInSector int32) error {
	base := a.sectorBase(anyAddrInSector)
	blank := make([]byte, a.sectorSize)
	for i := range blank {
		blank[i] = 0xFF
	}
	if _, err := a.file.WriteAt(blank, base); err != nil {
		return errors.Wrapf(ringerr.ErrAdapter, "flash: erase sector at %d: %v", base, err)
	}
	return nil
}

// Program implements Adapter, ANDing data into the existing file contents.
func (a *FileAdapter) Program(addr int32, data []byte) error {
	existing := make([]byte, len(data))
	if _, err := a.file.ReadAt(existing, int64(addr)); err != nil {
		return errors.Wrapf(ringerr.ErrAdapter, "flash: program read-before-write at %d: %v", addr, err)
	}
	for i := range data {
		existing[i] &= data[i]
	}
	if _, err := a.file.WriteAt(existing, int64(addr)); err != nil {
		return errors.Wrapf(ringerr.ErrAdapter, "flash: program at %d: %v", addr, err)
	}
	return nil
}

// Read implements Adapter.
func (a *FileAdapter) Read(addr int32, buf []byte) error {
	if _, err := a.file.ReadAt(buf, int64(addr)); err != nil {
		return errors.Wrapf(ringerr.ErrAdapter, "flash: read at %d: %v", addr, err)
	}
	return nil
}

// Sync flushes the file to stable storage.
func (a *FileAdapter) Sync() error {
	return a.file.Sync()
}
