package rx

import "fmt"

// State encodes the receive-side position in the session. The
// progression follows the handshake (SOT → parameters → SOF), the data
// phase, the trailer (checksum → filename → EOT), and a grace window
// that absorbs final retransmissions before shutdown.
type State uint8

const (
	StateAwaitSot      State = iota // waiting for the broadcast SOT
	StateAwaitParams                // waiting for the transfer parameters
	StateAwaitSof                   // waiting for the start-of-file marker
	StateDataOrEOF                  // accepting data frames or EOF/EOT
	StateAwaitChecksum              // waiting for the end-to-end checksum
	StateAwaitFilename              // waiting for the filename
	StateAfterEOT                   // EOT seen, absorbing retransmits
	StateDone                       // session finished
)

func (s State) String() string {
	switch s {
	case StateAwaitSot:
		return "await_sot"
	case StateAwaitParams:
		return "await_params"
	case StateAwaitSof:
		return "await_sof"
	case StateDataOrEOF:
		return "data_or_eof"
	case StateAwaitChecksum:
		return "await_checksum"
	case StateAwaitFilename:
		return "await_filename"
	case StateAfterEOT:
		return "after_eot"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}
