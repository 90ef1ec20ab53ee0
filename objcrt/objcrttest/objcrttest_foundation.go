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

package objcrttest

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/BrainiumLLC/objc-util/objcrt"
)

type class struct {
	cls             objcrt.Class
	name            string
	super           *class
	instanceMethods map[string]*method
	classMethods    map[string]*method
}

// instance is a fake object. obj must stay the first field, so that
// pointers to the instance and to its Object are interchangeable.
type instance struct {
	obj   objcrt.Object
	class *class
	refs  int
	data  []byte
}

func (inst *instance) ptr() unsafe.Pointer {
	return unsafe.Pointer(&inst.obj)
}

func (inst *instance) isKindOf(name string) bool {
	for cls := inst.class; cls != nil; cls = cls.super {
		if cls.name == name {
			return true
		}
	}
	return false
}

// The runtime lock is held while a method runs. For class methods self is
// nil; cls is always the class of the receiver.
type imp func(rt *Runtime, self *instance, cls *class, args []any) (any, error)

type method struct {
	sig objcrt.MethodSignature
	imp imp
}

func sig(ret string, args ...string) objcrt.MethodSignature {
	return objcrt.MethodSignature{Return: ret, Args: args}
}

func (rt *Runtime) defineClass(name string, super *class) *class {
	cls := &class{
		name:            name,
		super:           super,
		instanceMethods: make(map[string]*method),
		classMethods:    make(map[string]*method),
	}
	rt.classes[name] = cls
	rt.classesByPtr[unsafe.Pointer(&cls.cls)] = cls
	return cls
}

func (rt *Runtime) alloc(cls *class) *instance {
	self := &instance{
		class: cls,
		refs:  1,
	}
	rt.instances[self.ptr()] = self
	return self
}

func (rt *Runtime) defineFoundation() {
	nsObject := rt.defineClass("NSObject", nil)
	nsObject.classMethods["alloc"] = &method{
		sig: sig("@"),
		imp: func(rt *Runtime, _ *instance, cls *class, _ []any) (any, error) {
			return rt.alloc(cls).ptr(), nil
		},
	}
	nsObject.classMethods["new"] = nsObject.classMethods["alloc"]
	nsObject.classMethods["class"] = &method{
		sig: sig("#"),
		imp: func(_ *Runtime, _ *instance, cls *class, _ []any) (any, error) {
			return unsafe.Pointer(&cls.cls), nil
		},
	}
	nsObject.instanceMethods["init"] = &method{
		sig: sig("@"),
		imp: func(_ *Runtime, self *instance, _ *class, _ []any) (any, error) {
			return self.ptr(), nil
		},
	}
	nsObject.instanceMethods["retain"] = &method{
		sig: sig("@"),
		imp: func(_ *Runtime, self *instance, _ *class, _ []any) (any, error) {
			self.refs += 1
			return self.ptr(), nil
		},
	}
	nsObject.instanceMethods["release"] = &method{
		sig: sig("v"),
		imp: func(_ *Runtime, self *instance, _ *class, _ []any) (any, error) {
			if self.refs == 0 {
				return nil, fmt.Errorf("over-release of %s instance %p", self.class.name, self.ptr())
			}
			self.refs -= 1
			return nil, nil
		},
	}
	nsObject.instanceMethods["retainCount"] = &method{
		sig: sig("Q"),
		imp: func(_ *Runtime, self *instance, _ *class, _ []any) (any, error) {
			return objcrt.NSUInteger(self.refs), nil
		},
	}
	nsObject.instanceMethods["hash"] = &method{
		sig: sig("Q"),
		imp: func(_ *Runtime, self *instance, _ *class, _ []any) (any, error) {
			return objcrt.NSUInteger(uintptr(self.ptr())), nil
		},
	}
	nsObject.instanceMethods["isEqual:"] = &method{
		sig: sig("B", "@"),
		imp: func(_ *Runtime, self *instance, _ *class, args []any) (any, error) {
			other, err := pointerArg(args[0])
			if err != nil {
				return nil, err
			}
			return boolResult(other == self.ptr()), nil
		},
	}
	nsObject.instanceMethods["class"] = &method{
		sig: sig("#"),
		imp: func(_ *Runtime, self *instance, _ *class, _ []any) (any, error) {
			return unsafe.Pointer(&self.class.cls), nil
		},
	}

	nsData := rt.defineClass("NSData", nsObject)
	nsData.classMethods["data"] = &method{
		sig: sig("@"),
		imp: func(rt *Runtime, _ *instance, cls *class, _ []any) (any, error) {
			return rt.alloc(cls).ptr(), nil
		},
	}
	nsData.classMethods["dataWithBytes:length:"] = &method{
		sig: sig("@", "r^v", "Q"),
		imp: func(rt *Runtime, _ *instance, cls *class, args []any) (any, error) {
			data, err := bytesArgs(args[0], args[1])
			if err != nil {
				return nil, err
			}
			self := rt.alloc(cls)
			self.data = data
			return self.ptr(), nil
		},
	}
	nsData.instanceMethods["initWithBytes:length:"] = &method{
		sig: sig("@", "r^v", "Q"),
		imp: func(_ *Runtime, self *instance, _ *class, args []any) (any, error) {
			data, err := bytesArgs(args[0], args[1])
			if err != nil {
				return nil, err
			}
			self.data = data
			return self.ptr(), nil
		},
	}
	nsData.instanceMethods["length"] = &method{
		sig: sig("Q"),
		imp: func(_ *Runtime, self *instance, _ *class, _ []any) (any, error) {
			return uint64(len(self.data)), nil
		},
	}
	nsData.instanceMethods["bytes"] = &method{
		sig: sig("r^v"),
		imp: func(_ *Runtime, self *instance, _ *class, _ []any) (any, error) {
			if len(self.data) == 0 {
				return unsafe.Pointer(nil), nil
			}
			return unsafe.Pointer(&self.data[0]), nil
		},
	}
	nsData.instanceMethods["hash"] = &method{
		sig: sig("Q"),
		imp: func(_ *Runtime, self *instance, _ *class, _ []any) (any, error) {
			return objcrt.NSUInteger(xxhash.Sum64(self.data)), nil
		},
	}
	nsData.instanceMethods["isEqual:"] = &method{
		sig: sig("B", "@"),
		imp: func(rt *Runtime, self *instance, _ *class, args []any) (any, error) {
			ptr, err := pointerArg(args[0])
			if err != nil {
				return nil, err
			}
			other, ok := rt.instances[ptr]
			if !ok || !other.isKindOf("NSData") {
				return objcrt.NO, nil
			}
			return boolResult(bytes.Equal(self.data, other.data)), nil
		},
	}

	nsProcessInfo := rt.defineClass("NSProcessInfo", nsObject)
	nsProcessInfo.classMethods["processInfo"] = &method{
		sig: sig("@"),
		imp: func(rt *Runtime, _ *instance, cls *class, _ []any) (any, error) {
			if rt.processInfo == nil {
				rt.processInfo = rt.alloc(cls)
			}
			return rt.processInfo.ptr(), nil
		},
	}
	nsProcessInfo.instanceMethods["operatingSystemVersion"] = &method{
		sig: sig("{NSOperatingSystemVersion=qqq}"),
		imp: func(rt *Runtime, _ *instance, _ *class, _ []any) (any, error) {
			return objcrt.NSOperatingSystemVersion{
				MajorVersion: objcrt.NSInteger(rt.version.Major),
				MinorVersion: objcrt.NSInteger(rt.version.Minor),
				PatchVersion: objcrt.NSInteger(rt.version.Patch),
			}, nil
		},
	}
	nsProcessInfo.instanceMethods["processIdentifier"] = &method{
		sig: sig("i"),
		imp: func(_ *Runtime, _ *instance, _ *class, _ []any) (any, error) {
			return int32(os.Getpid()), nil
		},
	}
}

func boolResult(b bool) objcrt.BOOL {
	if b {
		return objcrt.YES
	}
	return objcrt.NO
}

func pointerArg(arg any) (unsafe.Pointer, error) {
	if arg == nil {
		return nil, nil
	}
	if ptr, ok := arg.(unsafe.Pointer); ok {
		return ptr, nil
	}
	value := reflect.ValueOf(arg)
	switch value.Kind() {
	case reflect.Pointer, reflect.UnsafePointer:
		return value.UnsafePointer(), nil
	case reflect.Slice:
		if value.Len() == 0 {
			return nil, nil
		}
		return value.Index(0).Addr().UnsafePointer(), nil
	}
	return nil, fmt.Errorf("expected a pointer argument, got %T", arg)
}

func uintArg(arg any) (uint64, error) {
	value := reflect.ValueOf(arg)
	switch value.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return value.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n := value.Int(); n >= 0 {
			return uint64(n), nil
		}
	}
	return 0, fmt.Errorf("expected an unsigned integer argument, got %T(%v)", arg, arg)
}

func bytesArgs(ptrArg, lenArg any) ([]byte, error) {
	ptr, err := pointerArg(ptrArg)
	if err != nil {
		return nil, err
	}
	length, err := uintArg(lenArg)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return []byte{}, nil
	}
	if ptr == nil {
		return nil, fmt.Errorf("nil bytes with length %d", length)
	}
	return bytes.Clone(unsafe.Slice((*byte)(ptr), length)), nil
}
