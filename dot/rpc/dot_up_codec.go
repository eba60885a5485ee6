// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package rpc

import (
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
)

// DotUpCodec is a JSON-RPC 2.0 codec accepting method names of the form
// module_methodName, dispatched to module.MethodName.
type DotUpCodec struct {
	codec *json2.Codec
}

// NewDotUpCodec returns a new DotUpCodec
func NewDotUpCodec() *DotUpCodec {
	return &DotUpCodec{
		codec: json2.NewCodec(),
	}
}

// NewRequest returns a new CodecRequest
func (c *DotUpCodec) NewRequest(r *http.Request) rpc.CodecRequest {
	return &DotUpCodecRequest{
		CodecRequest: c.codec.NewRequest(r),
	}
}

// DotUpCodecRequest decodes and encodes a single request
type DotUpCodecRequest struct {
	rpc.CodecRequest
}

// Method returns the service method name of the request, converting
// module_methodName into module.MethodName.
func (c *DotUpCodecRequest) Method() (string, error) {
	method, err := c.CodecRequest.Method()
	if err != nil {
		return "", err
	}

	service, name, found := strings.Cut(method, "_")
	if !found || name == "" {
		return method, nil
	}

	first, size := utf8.DecodeRuneInString(name)
	return service + "." + string(unicode.ToUpper(first)) + name[size:], nil
}
