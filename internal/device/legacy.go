package device

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Legacy is an opened /dev/input/mouseN node delivering PS/2 packets.
type Legacy struct {
	Info
	f    *os.File
	conn syscall.RawConn
}

// OpenLegacy opens a legacy mouse node. The multiplexed /dev/input/mice is
// rejected because it mixes the packets of every mouse.
func OpenLegacy(info Info) (*Legacy, error) {
	if info.Mice() {
		return nil, exitErrorf(ExitMiceForLegacy,
			"you cannot use %s, because it receives events from all other %s/mouse{N}", info.Path, inputDir)
	}
	f, err := os.OpenFile(info.Path, os.O_RDONLY, 0)
	if err != nil {
		return nil, exitErrorf(ExitOpenFailed, "cannot open device %s: %w", info.Path, err)
	}
	conn, err := f.SyscallConn()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cannot access %s: %w", info.Path, err)
	}
	return &Legacy{Info: info, f: f, conn: conn}, nil
}

// ReadPacket reads at most len(buf) bytes of the packet stream. A read may
// return fewer bytes than a full packet.
func (l *Legacy) ReadPacket(buf []byte) (int, error) {
	var (
		n       int
		readErr error
	)
	err := l.conn.Read(func(fd uintptr) bool {
		for {
			n, readErr = unix.Read(int(fd), buf)
			if !errors.Is(readErr, unix.EINTR) {
				break
			}
		}
		// Wait for readiness when the descriptor is non-blocking.
		return !errors.Is(readErr, unix.EAGAIN)
	})
	if err != nil {
		return 0, err
	}
	if readErr != nil {
		return 0, readErr
	}
	if n == 0 {
		return 0, errors.New("legacy device closed")
	}
	return n, nil
}

func (l *Legacy) Close() error {
	return l.f.Close()
}
