package obdcan

import "github.com/serebryakov7/obdpid/internal/errs"

// MakeQueryNoCtx builds a query frame for (mode,pid) under the given
// endianness, with no schema context. This is the stateless variant
// spec.md §4.6 calls for, used when no schema is loaded.
func MakeQueryNoCtx(bigEndian bool, mode, pid int) (Frame, error) {
	var f Frame
	f.ID = QueryID
	f.DLC = DLC

	if SAE(mode) {
		if pid > 0xFF {
			return Frame{}, errs.New(errs.InvalidPID, "pid %d exceeds 0xFF for SAE-standard mode %#x", pid, mode)
		}
		f.Data[0] = 2
		f.Data[1] = byte(mode)
		f.Data[2] = byte(pid)
		fillPad(&f.Data, 3)
	} else {
		f.Data[0] = 3
		f.Data[1] = byte(mode)
		putPID(&f.Data, 2, pid, bigEndian)
		fillPad(&f.Data, 4)
	}

	return f, nil
}

// MakeResponseNoCtx builds a response frame for (mode,pid,payload)
// under the given endianness, with no schema context.
func MakeResponseNoCtx(bigEndian bool, mode, pid int, payload []byte) (Frame, error) {
	if len(payload) < 1 || len(payload) > 5 {
		return Frame{}, errs.New(errs.InvalidParameter, "payload size %d out of range [1,5]", len(payload))
	}

	var f Frame
	f.ID = ResponseIDMin
	f.DLC = DLC

	offset := 3
	if SAE(mode) {
		offset = 2
	}
	if offset+1+len(payload) > len(f.Data) {
		return Frame{}, errs.New(errs.InvalidParameter, "payload size %d leaves no room for mode %#x's %d-byte header in an 8-byte frame", len(payload), mode, offset+1)
	}
	f.Data[0] = byte(offset + len(payload))
	f.Data[1] = byte(ResponseModeOffset + mode)

	if SAE(mode) {
		f.Data[2] = byte(pid)
	} else {
		putPID(&f.Data, 2, pid, bigEndian)
	}

	copy(f.Data[offset+1:], payload)
	fillPad(&f.Data, offset+1+len(payload))

	return f, nil
}

// ParseHeadersNoCtx decodes a frame's (mode,pid) header under the
// given endianness, with no schema context.
func ParseHeadersNoCtx(bigEndian bool, f Frame) (mode, pid int, err error) {
	if f.ID != QueryID && !isResponseID(f.ID) {
		return 0, 0, errs.New(errs.UnknownID, "identifier %#x is neither the query id nor in the response range", f.ID)
	}
	if f.DLC != DLC {
		return 0, 0, errs.New(errs.InvalidDLC, "dlc %d, want %d", f.DLC, DLC)
	}

	if isResponseID(f.ID) {
		if f.Data[1] < ResponseModeOffset+1 {
			return 0, 0, errs.New(errs.InvalidMode, "response service byte %#x is below the minimum valid value", f.Data[1])
		}
		mode = int(f.Data[1]) - ResponseModeOffset
	} else {
		mode = int(f.Data[1])
	}

	if SAE(mode) {
		pid = int(f.Data[2])
	} else {
		pid = getPID(f.Data, 2, bigEndian)
	}

	return mode, pid, nil
}

// MakeQuery is the Context-bound variant of MakeQueryNoCtx.
func (c *Context) MakeQuery(mode, pid int) (Frame, error) {
	return MakeQueryNoCtx(c.BigEndian, mode, pid)
}

// MakeResponse is the Context-bound variant of MakeResponseNoCtx.
func (c *Context) MakeResponse(mode, pid int, payload []byte) (Frame, error) {
	return MakeResponseNoCtx(c.BigEndian, mode, pid, payload)
}

// ParseHeaders is the Context-bound variant of ParseHeadersNoCtx.
func (c *Context) ParseHeaders(f Frame) (mode, pid int, err error) {
	return ParseHeadersNoCtx(c.BigEndian, f)
}

// ParseResponse decodes a response frame's header, looks up the
// (mode,pid) PID record, evaluates its expression over the frame's
// data bytes, and converts the raw result to SI units (spec.md §4.5).
func (c *Context) ParseResponse(f Frame) (float64, error) {
	mode, pid, err := c.ParseHeaders(f)
	if err != nil {
		return 0, err
	}
	if f.ID == QueryID {
		return 0, errs.New(errs.InvalidParameter, "frame %#x is a query, not a response", f.ID)
	}

	rec, ok := c.GetDescriptor(mode, pid)
	if !ok {
		return 0, errs.New(errs.UnknownModePID, "no pid record for mode %#x pid %#x", mode, pid)
	}

	offset := 3
	if SAE(mode) {
		offset = 2
	}
	wantPCI := offset + rec.CANBytes
	if int(f.Data[0]) != wantPCI {
		return 0, errs.New(errs.InvalidDataBytes, "pci length %d, want %d", f.Data[0], wantPCI)
	}

	window := f.Data[offset+1 : offset+1+rec.CANBytes]
	raw, err := evaluate(c.BigEndian, rec, window)
	if err != nil {
		return 0, err
	}

	return rec.Convert(raw), nil
}
