package services

import "errors"

// Kind mengelompokkan error service biar handler bisa mapping ke HTTP status
// tanpa string matching
type Kind int

const (
	KindValidation Kind = iota + 1 // input jelek, ditolak sebelum buka transaksi
	KindConflict                   // slot bentrok / kalah race serialization
	KindNotFound
	KindState     // transisi dari state yang salah
	KindSignature // signature webhook tidak cocok
	KindExternal  // gateway pembayaran error
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func errValidation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }
func errConflict(msg string) error   { return &Error{Kind: KindConflict, Msg: msg} }
func errNotFound(msg string) error   { return &Error{Kind: KindNotFound, Msg: msg} }
func errState(msg string) error      { return &Error{Kind: KindState, Msg: msg} }
func errSignature(msg string) error  { return &Error{Kind: KindSignature, Msg: msg} }
func errExternal(msg string) error   { return &Error{Kind: KindExternal, Msg: msg} }

// IsKind mengecek apakah err adalah service Error dengan kind tertentu
func IsKind(err error, k Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == k
}
