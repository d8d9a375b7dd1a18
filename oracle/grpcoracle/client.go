package grpcoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"pollmark.io/pollmark/oracle"
)

// Client implements oracle.ChainQuery over the ChainQuery gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client ChainQueryClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", oracle.ErrUnavailable, err)
	}
	return &Client{cc: cc, client: NewChainQueryClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(parent, c.Timeout)
	}
	return context.WithCancel(parent)
}

// mapRPC folds transport failures into ErrUnavailable. NotFound is handled by
// the callers as Unknown, never as an error.
func mapRPC(err error) error {
	return fmt.Errorf("%w: %v", oracle.ErrUnavailable, err)
}

// fromStruct decodes a reply payload. A malformed payload is a decode
// error, not ErrUnavailable: retrying will not fix it.
func fromStruct[T any](s *structpb.Struct) (T, error) {
	var out T
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return out, fmt.Errorf("grpcoracle: encode reply: %v", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("grpcoracle: decode reply: %v", err)
	}
	return out, nil
}

func lookupRPC[T any](call func() (*structpb.Struct, error)) (oracle.Lookup[T], error) {
	s, err := call()
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return oracle.Unknown[T](), nil
		}
		return oracle.Unknown[T](), mapRPC(err)
	}
	v, err := fromStruct[T](s)
	if err != nil {
		return oracle.Unknown[T](), err
	}
	return oracle.Found(v), nil
}

func (c *Client) AccountInfo(ctx context.Context, stakeAddr string) (oracle.Lookup[oracle.AccountInfo], error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	return lookupRPC[oracle.AccountInfo](func() (*structpb.Struct, error) {
		return c.client.AccountInfo(ctx, wrapperspb.String(stakeAddr))
	})
}

func (c *Client) AddressInfo(ctx context.Context, addr string) (oracle.Lookup[oracle.AddressInfo], error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	return lookupRPC[oracle.AddressInfo](func() (*structpb.Struct, error) {
		return c.client.AddressInfo(ctx, wrapperspb.String(addr))
	})
}

func (c *Client) DRepInfo(ctx context.Context, drepID string) (oracle.Lookup[oracle.DRepInfo], error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	return lookupRPC[oracle.DRepInfo](func() (*structpb.Struct, error) {
		return c.client.DRepInfo(ctx, wrapperspb.String(drepID))
	})
}

func (c *Client) IsCommitteeMember(ctx context.Context, coldCredentialHex string) (bool, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.IsCommitteeMember(ctx, wrapperspb.String(coldCredentialHex))
	if err != nil {
		return false, mapRPC(err)
	}
	return reply.GetValue(), nil
}

func (c *Client) PoolPower(ctx context.Context, poolID string) (oracle.Lookup[uint64], error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.PoolPower(ctx, wrapperspb.String(poolID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return oracle.Unknown[uint64](), nil
		}
		return oracle.Unknown[uint64](), mapRPC(err)
	}
	return oracle.Found(reply.GetValue()), nil
}

func (c *Client) TransactionUTXOs(ctx context.Context, txID string) (oracle.Lookup[oracle.TxUTXOs], error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	return lookupRPC[oracle.TxUTXOs](func() (*structpb.Struct, error) {
		return c.client.TransactionUTXOs(ctx, wrapperspb.String(txID))
	})
}

var _ oracle.ChainQuery = (*Client)(nil)
