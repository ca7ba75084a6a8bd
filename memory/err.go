package memory

import (
	"github.com/ezrec/duck/translate"
)

var f = translate.From

var (
	// Memory errors
	ErrSegFault   = translate.New("segmentation fault")
	ErrMapped     = translate.New("address already mapped")
	ErrLoadLength = translate.New("image does not fit in memory")
)

// ErrAddress reports an access outside the configured address space.
type ErrAddress struct {
	Addr int32
	Size int
}

func (err *ErrAddress) Error() string {
	return f("address %d outside [0, %d)", err.Addr, err.Size)
}

func (err *ErrAddress) Unwrap() error {
	return ErrSegFault
}
