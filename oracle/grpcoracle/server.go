package grpcoracle

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"pollmark.io/pollmark/oracle"
)

// Server exposes an oracle.ChainQuery over the ChainQuery gRPC service.
type Server struct {
	UnimplementedChainQueryServer
	Chain oracle.ChainQuery
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode failed")
	}
	return s, nil
}

func serveLookup[T any](s *Server, got oracle.Lookup[T], err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	if !got.Known {
		return nil, status.Error(codes.NotFound, "unknown subject")
	}
	return toStruct(got.Value)
}

func (s *Server) AccountInfo(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s == nil || s.Chain == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing chain query")
	}
	got, err := s.Chain.AccountInfo(ctx, in.GetValue())
	return serveLookup(s, got, err)
}

func (s *Server) AddressInfo(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s == nil || s.Chain == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing chain query")
	}
	got, err := s.Chain.AddressInfo(ctx, in.GetValue())
	return serveLookup(s, got, err)
}

func (s *Server) DRepInfo(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s == nil || s.Chain == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing chain query")
	}
	got, err := s.Chain.DRepInfo(ctx, in.GetValue())
	return serveLookup(s, got, err)
}

func (s *Server) IsCommitteeMember(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if s == nil || s.Chain == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing chain query")
	}
	member, err := s.Chain.IsCommitteeMember(ctx, in.GetValue())
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return wrapperspb.Bool(member), nil
}

func (s *Server) PoolPower(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error) {
	if s == nil || s.Chain == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing chain query")
	}
	got, err := s.Chain.PoolPower(ctx, in.GetValue())
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	if !got.Known {
		return nil, status.Error(codes.NotFound, "unknown pool")
	}
	return wrapperspb.UInt64(got.Value), nil
}

func (s *Server) TransactionUTXOs(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if s == nil || s.Chain == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing chain query")
	}
	got, err := s.Chain.TransactionUTXOs(ctx, in.GetValue())
	return serveLookup(s, got, err)
}
