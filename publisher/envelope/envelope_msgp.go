/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package envelope

import (
	"github.com/tinylib/msgp/msgp"
)

// MarshalMsg implements msgp.Marshaler
func (z *Envelope) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendMapHeader(o, 5)
	o = msgp.AppendString(o, "id")
	o = msgp.AppendString(o, z.ID)
	o = msgp.AppendString(o, "content_type")
	o = msgp.AppendString(o, z.ContentType)
	o = msgp.AppendString(o, "headers")
	if z.Headers == nil {
		o = msgp.AppendNil(o)
	} else {
		o = msgp.AppendMapHeader(o, uint32(len(z.Headers)))
		for k, v := range z.Headers {
			o = msgp.AppendString(o, k)
			o = msgp.AppendString(o, v)
		}
	}
	o = msgp.AppendString(o, "created_at")
	o = msgp.AppendInt64(o, z.CreatedAt)
	o = msgp.AppendString(o, "body")
	o = msgp.AppendBytes(o, z.Body)
	return
}

// UnmarshalMsg implements msgp.Unmarshaler. Unknown fields are skipped
func (z *Envelope) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var field []byte
	var fields uint32
	fields, bts, err = msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		err = msgp.WrapError(err)
		return
	}
	for fields > 0 {
		fields--
		field, bts, err = msgp.ReadMapKeyZC(bts)
		if err != nil {
			err = msgp.WrapError(err)
			return
		}
		switch msgp.UnsafeString(field) {
		case "id":
			z.ID, bts, err = msgp.ReadStringBytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "ID")
				return
			}
		case "content_type":
			z.ContentType, bts, err = msgp.ReadStringBytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "ContentType")
				return
			}
		case "headers":
			bts, err = z.unmarshalHeaders(bts)
			if err != nil {
				err = msgp.WrapError(err, "Headers")
				return
			}
		case "created_at":
			z.CreatedAt, bts, err = msgp.ReadInt64Bytes(bts)
			if err != nil {
				err = msgp.WrapError(err, "CreatedAt")
				return
			}
		case "body":
			z.Body, bts, err = msgp.ReadBytesBytes(bts, z.Body)
			if err != nil {
				err = msgp.WrapError(err, "Body")
				return
			}
		default:
			bts, err = msgp.Skip(bts)
			if err != nil {
				err = msgp.WrapError(err)
				return
			}
		}
	}
	o = bts
	return
}

func (z *Envelope) unmarshalHeaders(bts []byte) ([]byte, error) {
	if msgp.IsNil(bts) {
		z.Headers = nil
		return msgp.ReadNilBytes(bts)
	}
	size, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, err
	}
	z.Headers = make(map[string]string, size)
	for size > 0 {
		size--
		var key, value string
		key, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return bts, err
		}
		value, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return bts, msgp.WrapError(err, key)
		}
		z.Headers[key] = value
	}
	return bts, nil
}

// Msgsize returns an upper bound estimate of the number of bytes occupied by the serialized message
func (z *Envelope) Msgsize() (s int) {
	s = 1 + 3 + msgp.StringPrefixSize + len(z.ID) + 13 + msgp.StringPrefixSize + len(z.ContentType) + 8 + msgp.MapHeaderSize
	for k, v := range z.Headers {
		s += msgp.StringPrefixSize + len(k) + msgp.StringPrefixSize + len(v)
	}
	s += 11 + msgp.Int64Size + 5 + msgp.BytesPrefixSize + len(z.Body)
	return
}
