package sfmp

import "fmt"

// Propose sends cmd to the responder. It is the first step of the
// validation handshake and is always performed by the initiator (client).
func Propose(s *Stream, cmd Command) error {
	if cmd.IsZero() {
		return ErrEmptyCommand
	}
	return s.WriteLine(cmd.String())
}

// AwaitVerdict reads the responder's reply. It returns nil on VALID and
// ErrRejected on INVALID; any other reply is a protocol error.
func AwaitVerdict(s *Stream) error {
	line, err := s.ReadLine()
	if err != nil {
		return err
	}
	v, err := ParseVerdict(line)
	if err != nil {
		return fmt.Errorf("%w: %q", err, line)
	}
	if v == Invalid {
		return ErrRejected
	}
	return nil
}

// Negotiate performs the initiator side of the handshake: Propose followed
// by AwaitVerdict.
func Negotiate(s *Stream, cmd Command) error {
	if err := Propose(s, cmd); err != nil {
		return err
	}
	return AwaitVerdict(s)
}

// ReceiveProposal reads and parses the next command line on the responder
// side. A parse failure (IsMalformed) is recoverable; any other error means
// the connection is unusable.
func ReceiveProposal(s *Stream) (Command, string, error) {
	line, err := s.ReadLine()
	if err != nil {
		return Command{}, "", err
	}
	cmd, err := Parse(line)
	return cmd, line, err
}

// Respond sends the responder's verdict.
func Respond(s *Stream, v Verdict) error {
	return s.WriteLine(v.Token())
}
