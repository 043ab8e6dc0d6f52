// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types that reach the storage layer.
// Timestamps are stored as Unix micro values.

var (
	// IDMUS serializes an ID.
	IDMUS = idMUS{}
	// ToolCallMUS serializes a ToolCall.
	ToolCallMUS = toolCallMUS{}
	// ToolResultMUS serializes a ToolResult.
	ToolResultMUS = toolResultMUS{}
	// MessageMUS serializes a Message.
	MessageMUS = messageMUS{}
	// SegmentMUS serializes a Segment.
	SegmentMUS = segmentMUS{}

	toolCallSliceMUS = ord.NewSliceSer[ToolCall](ToolCallMUS)
	toolResultPtrMUS = ord.NewPtrSer[ToolResult](ToolResultMUS)
	vectorMUS        = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS      = ord.NewMapSer[string, string](ord.String, ord.String)
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type toolCallMUS struct{}

func (toolCallMUS) Marshal(c ToolCall, bs []byte) (n int) {
	n = ord.String.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.Name, bs[n:])
	n += ord.String.Marshal(c.Arguments, bs[n:])
	return n
}

func (toolCallMUS) Unmarshal(bs []byte) (c ToolCall, n int, err error) {
	var n1 int
	c.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Arguments, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (toolCallMUS) Size(c ToolCall) int {
	return ord.String.Size(c.Id) + ord.String.Size(c.Name) + ord.String.Size(c.Arguments)
}

func (toolCallMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 3; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type toolResultMUS struct{}

func (toolResultMUS) Marshal(r ToolResult, bs []byte) (n int) {
	n = ord.String.Marshal(r.CallId, bs)
	n += ord.String.Marshal(r.Name, bs[n:])
	n += ord.String.Marshal(r.Text, bs[n:])
	return n
}

func (toolResultMUS) Unmarshal(bs []byte) (r ToolResult, n int, err error) {
	var n1 int
	r.CallId, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	r.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (toolResultMUS) Size(r ToolResult) int {
	return ord.String.Size(r.CallId) + ord.String.Size(r.Name) + ord.String.Size(r.Text)
}

func (toolResultMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 3; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type messageMUS struct{}

func (messageMUS) Marshal(m Message, bs []byte) (n int) {
	n = varint.Int.Marshal(int(m.Role), bs)
	n += ord.String.Marshal(m.Text, bs[n:])
	n += toolCallSliceMUS.Marshal(m.ToolCalls, bs[n:])
	n += toolResultPtrMUS.Marshal(m.ToolResult, bs[n:])
	n += varint.Int64.Marshal(m.Timestamp.UnixMicro(), bs[n:])
	return n
}

func (messageMUS) Unmarshal(bs []byte) (m Message, n int, err error) {
	var n1 int
	var role int
	role, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	m.Role = Role(role)
	m.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.ToolCalls, n1, err = toolCallSliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.ToolResult, n1, err = toolResultPtrMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micro int64
	micro, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Timestamp = time.UnixMicro(micro).UTC()
	return
}

func (messageMUS) Size(m Message) int {
	return varint.Int.Size(int(m.Role)) +
		ord.String.Size(m.Text) +
		toolCallSliceMUS.Size(m.ToolCalls) +
		toolResultPtrMUS.Size(m.ToolResult) +
		varint.Int64.Size(m.Timestamp.UnixMicro())
}

func (messageMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = varint.Int.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = toolCallSliceMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = toolResultPtrMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

type segmentMUS struct{}

func (segmentMUS) Marshal(s Segment, bs []byte) (n int) {
	n = IDMUS.Marshal(s.Id, bs)
	n += ord.String.Marshal(s.Text, bs[n:])
	n += vectorMUS.Marshal(s.Vector, bs[n:])
	n += metadataMUS.Marshal(s.Metadata, bs[n:])
	n += varint.Int64.Marshal(s.InsertedAt.UnixMicro(), bs[n:])
	return n
}

func (segmentMUS) Unmarshal(bs []byte) (s Segment, n int, err error) {
	var n1 int
	s.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	s.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micro int64
	micro, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	s.InsertedAt = time.UnixMicro(micro).UTC()
	return
}

func (segmentMUS) Size(s Segment) int {
	return IDMUS.Size(s.Id) +
		ord.String.Size(s.Text) +
		vectorMUS.Size(s.Vector) +
		metadataMUS.Size(s.Metadata) +
		varint.Int64.Size(s.InsertedAt.UnixMicro())
}

func (segmentMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = metadataMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}
