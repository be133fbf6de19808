package server

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scouttrack/internal/core/model"
)

type recordingIngestor struct {
	mu    sync.Mutex
	fixes map[string][]model.Fix
}

func (r *recordingIngestor) Ingest(deviceID string, fix model.Fix) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if deviceID == "unknown" {
		return model.NotFoundError("team", deviceID)
	}
	if r.fixes == nil {
		r.fixes = make(map[string][]model.Fix)
	}
	r.fixes[deviceID] = append(r.fixes[deviceID], fix)
	return nil
}

func (r *recordingIngestor) count(deviceID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fixes[deviceID])
}

func TestTCPServer_IngestsH02Stream(t *testing.T) {
	ingestor := &recordingIngestor{}
	srv := NewTCPServer("127.0.0.1:0", ingestor, zerolog.Nop())
	require.NoError(t, srv.Start())
	defer srv.Stop()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	// Two messages in one write, a third split across writes, plus noise.
	_, err = conn.Write([]byte(
		"*HQ,dev1,V1,090000,A,3843.3380,N,00908.3580,W,0,0,100525,FFFFFFFF#" +
			"*HQ,dev1,V1,090002,A,3843.3390,N,00908.3590,W,0,0,100525,FFFFFBFD#" +
			"garbage#" +
			"*HQ,unknown,V1,090002,A,3843.3390,N,00908.3590,W,0,0,100525,FFFFFFFF#" +
			"*HQ,dev1,V1,090004,V,0000.0000,N,00000.0000,E,0,0,100525,FFFFFFFF#" +
			"*HQ,dev1,V1,0900"))
	require.NoError(t, err)
	_, err = conn.Write([]byte("06,A,3843.3400,N,00908.3600,W,0,0,100525,FFFFFFFF#\r\n"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return ingestor.count("dev1") == 3 }, time.Second, 5*time.Millisecond)

	ingestor.mu.Lock()
	fixes := ingestor.fixes["dev1"]
	ingestor.mu.Unlock()
	assert.False(t, fixes[0].SOS)
	assert.True(t, fixes[1].SOS)
	assert.Equal(t, time.Date(2025, 5, 10, 9, 0, 6, 0, time.UTC), fixes[2].Timestamp)
}

func TestTCPServer_StopClosesConnections(t *testing.T) {
	srv := NewTCPServer("127.0.0.1:0", &recordingIngestor{}, zerolog.Nop())
	require.NoError(t, srv.Start())

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		srv.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestSplitMessages(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		atEOF     bool
		advance   int
		token     string
		wantToken bool
	}{
		{"complete", "*HQ,a#rest", false, 6, "*HQ,a#", true},
		{"incomplete", "*HQ,a", false, 0, "", false},
		{"trailing at eof", "*HQ,a\n", true, 6, "*HQ,a", true},
		{"empty at eof", "", true, 0, "", false},
		{"leading newline", "\r\n*HQ,b#", false, 8, "*HQ,b#", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advance, token, err := splitMessages([]byte(tt.data), tt.atEOF)
			require.NoError(t, err)
			assert.Equal(t, tt.advance, advance)
			if tt.wantToken {
				assert.Equal(t, tt.token, string(token))
			} else {
				assert.Nil(t, token)
			}
		})
	}
}
