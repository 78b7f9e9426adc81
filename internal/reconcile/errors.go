package reconcile

var (
	ErrNotJoined      = errf("game not joined")
	ErrGameOver       = errf("game is over")
	ErrInputDisabled  = errf("move input is disabled")
	ErrViewingHistory = errf("viewing history")
	ErrInvalidSquare  = errf("invalid square")
	ErrBadTarget      = errf("drop target is off board or the source square")
	ErrNotYourPiece   = errf("no piece of yours on that square")
	ErrNoIntent       = errf("make a move first")
	ErrNoAuthority    = errf("no authority connection")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }
