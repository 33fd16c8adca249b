package ingest_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/typewatch/ingest"
)

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func TestFileEmitterParsesTypeAndTopic(t *testing.T) {
	f := ingest.NewFileEmitter([]string{"records.txt"})
	f.OpenFile = func(path string) (io.ReadCloser, error) {
		require.Equal(t, "records.txt", path)
		return nopCloser{strings.NewReader("std_msgs/msg/String@/chatter\nstd_msgs/msg/Int32\n\n")}, nil
	}
	require.NoError(t, f.Open())
	defer f.Close()

	rec1, err := f.Next(time.Second, true)
	require.NoError(t, err)
	require.Equal(t, "std_msgs/msg/String", rec1.TypeName)
	require.Equal(t, "/chatter", rec1.Topic)

	rec2, err := f.Next(time.Second, true)
	require.NoError(t, err)
	require.Equal(t, "std_msgs/msg/Int32", rec2.TypeName)
	require.Empty(t, rec2.Topic)

	_, err = f.Next(time.Second, true)
	require.Error(t, err)
	var noInput *ingest.NoInputError
	require.ErrorAs(t, err, &noInput)
}

func TestFileEmitterConsumesStdinLast(t *testing.T) {
	f := ingest.NewFileEmitter([]string{ingest.Stdin, "a.txt"})
	require.Equal(t, []string{"a.txt", ingest.Stdin}, f.Paths)

	var openedA bool
	f.OpenFile = func(path string) (io.ReadCloser, error) {
		openedA = true
		require.Equal(t, "a.txt", path)
		return nopCloser{strings.NewReader("pkg/msg/A\n")}, nil
	}
	f.Stdin = strings.NewReader("pkg/msg/B\n")

	require.NoError(t, f.Open())
	defer f.Close()

	rec1, err := f.Next(time.Second, true)
	require.NoError(t, err)
	require.True(t, openedA)
	require.Equal(t, "pkg/msg/A", rec1.TypeName)

	rec2, err := f.Next(time.Second, true)
	require.NoError(t, err)
	require.Equal(t, "pkg/msg/B", rec2.TypeName)
}

func TestFileEmitterNextTimesOutWithoutData(t *testing.T) {
	f := ingest.NewFileEmitter([]string{"slow.txt"})
	block := make(chan struct{})
	f.OpenFile = func(path string) (io.ReadCloser, error) {
		<-block
		return nopCloser{strings.NewReader("")}, nil
	}
	require.NoError(t, f.Open())
	defer func() {
		close(block)
		f.Close()
	}()

	_, err := f.Next(20*time.Millisecond, true)
	require.Error(t, err)
	require.True(t, errors.As(err, new(*ingest.TimeoutError)))
	require.False(t, errors.As(err, new(*ingest.NoInputError)))
}
