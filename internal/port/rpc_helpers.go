package port

import "fmt"

// okOrErr turns a (Reply, error) pair from an RPC call into a plain error,
// the shape every exported supervisor method returns.
func okOrErr(reply Reply, err error) error {
	if err != nil {
		return err
	}
	switch r := reply.(type) {
	case Ok:
		return nil
	case Error:
		return fmt.Errorf("%s", r.Message)
	default:
		return fmt.Errorf("device desync")
	}
}
