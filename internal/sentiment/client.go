// Package sentiment scores stimulus text in [-1, 1]. The engine consumes
// scores through the Scorer interface; the gRPC client talks to the
// upstream ingestion sidecar and the lexical scorer is the offline fallback.
package sentiment

// #region imports
import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #endregion

// #region scorer-interface

// Scorer abstracts sentiment scoring so the core can be tested without a
// network dependency.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// #endregion scorer-interface

// #region client

// scoreMethod is the full gRPC method of the sidecar's scoring RPC. The
// sidecar speaks google.protobuf.Struct on both sides, so no generated
// stubs are needed here.
const scoreMethod = "/sentiment.v1.SentimentService/Score"

// Client wraps the gRPC connection to the sentiment sidecar.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to the sentiment sidecar.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Score invokes the sidecar and returns the score field of its response.
func (c *Client) Score(ctx context.Context, text string) (float64, error) {
	req, err := structpb.NewStruct(map[string]any{"text": text})
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, scoreMethod, req, resp); err != nil {
		return 0, fmt.Errorf("score rpc: %w", err)
	}

	field, ok := resp.GetFields()["score"]
	if !ok {
		return 0, fmt.Errorf("score rpc: response missing score field")
	}
	return clampScore(field.GetNumberValue()), nil
}

// #endregion client

// #region helpers

func clampScore(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
