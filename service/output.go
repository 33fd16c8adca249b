package service

import (
	"errors"
	"io"
	"os"
)

// writerOnly strips any io.Closer a wrapped writer implements. Used for
// stdout/stderr so emit.Writer.Close() never closes a standard stream.
type writerOnly struct{ io.Writer }

// openOutput resolves Options' output destination into a writer: a named
// output file must not already exist unless Append or Overwrite is set;
// otherwise output goes to stdout, or stderr when SwapOutputs is set.
func openOutput(o Options) (io.Writer, error) {
	if o.OutputPath == "" {
		if o.SwapOutputs {
			return writerOnly{os.Stderr}, nil
		}
		return writerOnly{os.Stdout}, nil
	}

	if _, err := os.Stat(o.OutputPath); err == nil {
		if !o.Overwrite && !o.Append {
			return nil, &IoFailureError{Op: "open output", Err: errors.New("output file already exists")}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &IoFailureError{Op: "stat output", Err: err}
	}

	flags := os.O_WRONLY | os.O_CREATE
	if o.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(o.OutputPath, flags, 0o644)
	if err != nil {
		return nil, &IoFailureError{Op: "open output", Err: err}
	}
	return f, nil
}
