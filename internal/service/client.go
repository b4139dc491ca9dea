package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote cifra.v1.Cipher service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Transform(ctx context.Context, req TransformRequest, opts ...grpc.CallOption) (TransformResponse, error) {
	in, err := req.encode()
	if err != nil {
		return TransformResponse{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodTransform, in, out, opts...); err != nil {
		return TransformResponse{}, err
	}
	return decodeTransformResponse(out), nil
}

func (c *Client) Crack(ctx context.Context, req CrackRequest, opts ...grpc.CallOption) (CrackResponse, error) {
	in, err := req.encode()
	if err != nil {
		return CrackResponse{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodCrack, in, out, opts...); err != nil {
		return CrackResponse{}, err
	}
	return decodeCrackResponse(out), nil
}

func (c *Client) Frequency(ctx context.Context, req FrequencyRequest, opts ...grpc.CallOption) (FrequencyResponse, error) {
	in, err := req.encode()
	if err != nil {
		return FrequencyResponse{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodFrequency, in, out, opts...); err != nil {
		return FrequencyResponse{}, err
	}
	return decodeFrequencyResponse(out), nil
}

// TokenCredentials attaches a bearer token to every call. It is meant for
// plaintext loopback connections and does not require transport security.
type TokenCredentials string

var _ credentials.PerRPCCredentials = TokenCredentials("")

func (t TokenCredentials) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + string(t)}, nil
}

func (t TokenCredentials) RequireTransportSecurity() bool {
	return false
}
