// Package grpcclient provides gRPC client interceptors that attach a Bearer token to every
// outgoing call, for trusted in-process collaborators that talk to gRPC backends with the
// internal token.
//
//	conn, err := grpc.NewClient(
//	    "backend:9090",
//	    append(grpcclient.DialOptions(grpcclient.TokenSourceFunc(service.InternalAccessToken)),
//	        grpc.WithTransportCredentials(creds))...,
//	)
package grpcclient
