// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

//go:build tinygo.wasm

package main

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/BrainiumLLC/objc-util/codegen"
)

var buffers = make(map[*uint8][]uint8)

//go:export objcgen_allocate
func objcgenAllocate(len uint32) *uint8 {
	if len > math.MaxInt32 {
		return nil
	}
	buf := make([]uint8, int(len))
	ptr := unsafe.SliceData(buf)
	buffers[ptr] = buf
	return ptr
}

//go:export objcgen_deallocate
func objcgenDeallocate(ptr *uint8) {
	delete(buffers, ptr)
}

//go:export objcgen_generate/go
func objcgenGenerateGo(requestPtr *uint8, responsePtrPtr **uint8) uint8 {
	requestBuf, ok := buffers[requestPtr]
	if !ok {
		return respond(responsePtrPtr, &codegen.PluginResponse{
			Error: "request was not allocated with objcgen_allocate",
		})
	}
	var request codegen.PluginRequest
	if err := codegen.DecodePluginMessage(requestBuf, &request); err != nil {
		return respond(responsePtrPtr, &codegen.PluginResponse{
			Error: fmt.Sprintf("Decode(PluginRequest): %v", err),
		})
	}
	return respond(responsePtrPtr, generate(&request))
}

// respond stores the encoded response where the host can read it, and
// returns the status code for the host.
func respond(responsePtrPtr **uint8, response *codegen.PluginResponse) uint8 {
	responseBuf, err := codegen.EncodePluginMessage(response)
	if err != nil {
		responseBuf, _ = codegen.EncodePluginMessage(&codegen.PluginResponse{
			Error: fmt.Sprintf("Encode(PluginResponse): %v", err),
		})
	}
	responsePtr := unsafe.SliceData(responseBuf)
	buffers[responsePtr] = responseBuf
	*responsePtrPtr = responsePtr
	if response.Error != "" || err != nil {
		return 1
	}
	return 0
}
