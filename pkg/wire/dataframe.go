package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/barnettlynn/s6hcs/pkg/progress"
)

// DataframeSize is the chunk size file payloads are split into on the wire
// (§4.9): 8 MiB.
const DataframeSize = 8 * 1024 * 1024

// CountDataframes returns the number of dataframes needed to carry n bytes.
func CountDataframes(n int) uint64 {
	if n == 0 {
		return 0
	}
	return (uint64(n) + DataframeSize - 1) / DataframeSize
}

// SendFile writes the dataframe count frame followed by that many payload
// frames, each DataframeSize bytes except possibly the last. bridge may be
// nil; one tick is sent per frame transferred.
func SendFile(c Conn, data []byte, bridge *progress.Bridge) error {
	count := CountDataframes(len(data))

	var countBuf [8]byte
	binary.BigEndian.PutUint64(countBuf[:], count)
	if err := c.WriteFrame(countBuf[:]); err != nil {
		return fmt.Errorf("wire: send dataframe count: %w", err)
	}

	for i := uint64(0); i < count; i++ {
		start := i * DataframeSize
		end := start + DataframeSize
		if end > uint64(len(data)) {
			end = uint64(len(data))
		}
		if err := c.WriteFrame(data[start:end]); err != nil {
			return fmt.Errorf("wire: send dataframe %d: %w", i, err)
		}
		bridge.Tick()
	}
	return nil
}

// RecvFile reads the dataframe count frame, then exactly that many payload
// frames, concatenating them into the full file contents.
func RecvFile(c Conn, bridge *progress.Bridge) ([]byte, error) {
	countBuf, err := c.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("wire: recv dataframe count: %w", err)
	}
	if len(countBuf) != 8 {
		return nil, fmt.Errorf("wire: malformed dataframe count frame (%d bytes)", len(countBuf))
	}
	count := binary.BigEndian.Uint64(countBuf)

	out := make([]byte, 0, count*DataframeSize)
	for i := uint64(0); i < count; i++ {
		frame, err := c.ReadFrame()
		if err != nil {
			return nil, fmt.Errorf("wire: recv dataframe %d: %w", i, err)
		}
		out = append(out, frame...)
		bridge.Tick()
	}
	return out, nil
}
