package main

import (
	"os"
	"sync"
)

// osFS is the host file-I/O collaborator hardware/trap's DCLOAD hook calls
// through (trap.HostFS), backed by real host files. fd 0/1/2 are wired to
// stdin/stdout/stderr to match DCLOAD's default guest fd table
// (hardware/trap/dcload.go's resetFDs).
type osFS struct {
	mu    sync.Mutex
	files map[int]*os.File
	next  int
}

func newOSFS() *osFS {
	return &osFS{
		files: map[int]*os.File{0: os.Stdin, 1: os.Stdout, 2: os.Stderr},
		next:  3,
	}
}

func (o *osFS) Read(fd int, buf []byte) (int, error) {
	o.mu.Lock()
	f, ok := o.files[fd]
	o.mu.Unlock()
	if !ok {
		return 0, os.ErrClosed
	}
	return f.Read(buf)
}

func (o *osFS) Write(fd int, buf []byte) (int, error) {
	o.mu.Lock()
	f, ok := o.files[fd]
	o.mu.Unlock()
	if !ok {
		return 0, os.ErrClosed
	}
	return f.Write(buf)
}

func (o *osFS) Lseek(fd int, offset, whence int64) (int64, error) {
	o.mu.Lock()
	f, ok := o.files[fd]
	o.mu.Unlock()
	if !ok {
		return 0, os.ErrClosed
	}
	return f.Seek(offset, int(whence))
}

func (o *osFS) Open(name string, flags int) (int, error) {
	f, err := os.OpenFile(name, flags, 0644)
	if err != nil {
		return -1, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	fd := o.next
	o.next++
	o.files[fd] = f
	return fd, nil
}

func (o *osFS) Close(fd int) error {
	o.mu.Lock()
	f, ok := o.files[fd]
	delete(o.files, fd)
	o.mu.Unlock()
	if !ok {
		return os.ErrClosed
	}
	if fd <= 2 {
		return nil // never actually close stdio
	}
	return f.Close()
}
