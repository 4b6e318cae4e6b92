// Package stream implements the event-driven streaming handler that is
// the core of the pipeline: it tokenizes a BSM JSON document in a single
// pass, drives the velocity and geofence filters inline as the relevant
// fields arrive, optionally redacts the vehicle id, and reconstructs a
// canonical JSON document for messages that survive.
package stream

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/jpo-ppm/ppm/internal/bsm"
	"github.com/jpo-ppm/ppm/internal/filter"
	"github.com/jpo-ppm/ppm/internal/geo"
	"github.com/jpo-ppm/ppm/internal/quad"
)

// Result is the latched outcome of processing one message.
type Result int

const (
	Success Result = iota
	Parse
	Speed
	Geoposition
	Other
)

// String renders the result the way suppression log lines name it.
func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case Parse:
		return "PARSE"
	case Speed:
		return "SPEED"
	case Geoposition:
		return "GEOPOSITION"
	default:
		return "OTHER"
	}
}

// Flag is a bit in the handler's activation bitset.
type Flag uint8

const (
	Velocity Flag = 1 << iota
	Geofence
	IDRedact
)

// All activates every filter, matching the documented default.
const All = Velocity | Geofence | IDRedact

// Config bundles everything the handler needs to evaluate filters: which
// are active, the velocity band, the geofence index, and the id redactor.
// A nil Geofence admits every position even with the Geofence flag set;
// a nil Redactor redacts nothing even with the IDRedact flag set.
type Config struct {
	Flags    Flag
	Velocity filter.Velocity
	Geofence *quad.Quad
	Redactor *filter.IDRedactor
}

type frameKind int

const (
	frameObject frameKind = iota
	frameArray
)

type frame struct {
	kind      frameKind
	first     bool
	expectKey bool
}

// Handler is reused across messages: Process resets it at each call
// rather than allocating a fresh handler per message.
type Handler struct {
	cfg Config

	bsm    bsm.BSM
	result Result

	frames    []frame
	nameStack []string
	currentKey string

	output bytes.Buffer

	nextValueIsFilterField bool
	latSet, lonSet         bool
}

// NewHandler returns a handler bound to cfg. cfg is read, not copied by
// reference into mutable state, so changing cfg.Geofence/Redactor after
// construction is safe between messages (the spatial index and redactor
// are themselves read-only/externally synchronized).
func NewHandler(cfg Config) *Handler {
	return &Handler{cfg: cfg}
}

// BSM returns the BSM materialized by the most recent Process call.
func (h *Handler) BSM() *bsm.BSM { return &h.bsm }

// Result returns the latched result of the most recent Process call.
func (h *Handler) Result() Result { return h.result }

func (h *Handler) reset() {
	h.bsm.Reset()
	h.result = Success
	h.frames = h.frames[:0]
	h.nameStack = h.nameStack[:0]
	h.currentKey = ""
	h.output.Reset()
	h.nextValueIsFilterField = false
	h.latSet = false
	h.lonSet = false
}

// Process tokenizes data, driving filters inline. It returns whether the
// message survived, the reconstructed (or truncated) JSON text, and the
// latched result. On success, output is the canonical reconstruction of
// data with the id redacted per policy. On failure, output is the valid
// JSON text processed up to and including the token that caused the
// latch — nothing is appended afterward.
func (h *Handler) Process(data []byte) (bool, string, Result) {
	h.reset()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			h.result = Parse
			break
		}
		if h.handleToken(tok) {
			break
		}
	}

	return h.result == Success, h.output.String(), h.result
}

// handleToken dispatches one token and reports whether this call newly
// latched a non-success result.
func (h *Handler) handleToken(tok json.Token) bool {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			h.onStartObject()
		case '}':
			h.onEndObject()
		case '[':
			h.onStartArray()
		case ']':
			h.onEndArray()
		}
		return false
	case string:
		if h.expectingKey() {
			h.onKey(v)
			return false
		}
		return h.onString(v)
	case json.Number:
		return h.onRawNumber(string(v))
	case bool:
		h.beforeValue()
		h.output.WriteString(strconv.FormatBool(v))
		h.afterValue()
		return false
	case nil:
		h.beforeValue()
		h.output.WriteString("null")
		h.afterValue()
		return false
	}
	return false
}

func (h *Handler) expectingKey() bool {
	if len(h.frames) == 0 {
		return false
	}
	top := h.frames[len(h.frames)-1]
	return top.kind == frameObject && top.expectKey
}

func (h *Handler) topFrame() *frame {
	if len(h.frames) == 0 {
		return nil
	}
	return &h.frames[len(h.frames)-1]
}

// beforeValue inserts the comma an array needs before its next element.
// Object frames need no comma here: onKey already emitted the leading
// comma/colon for this value's key.
func (h *Handler) beforeValue() {
	top := h.topFrame()
	if top == nil || top.kind != frameArray {
		return
	}
	if !top.first {
		h.output.WriteByte(',')
	}
	top.first = false
}

// afterValue flips an enclosing object frame back to expecting a key.
func (h *Handler) afterValue() {
	top := h.topFrame()
	if top != nil && top.kind == frameObject {
		top.expectKey = true
	}
}

func (h *Handler) onStartObject() {
	h.beforeValue()
	h.output.WriteByte('{')

	name := ""
	if top := h.topFrame(); top != nil && top.kind == frameObject {
		name = h.currentKey
	}
	h.nameStack = append(h.nameStack, name)
	h.frames = append(h.frames, frame{kind: frameObject, first: true, expectKey: true})
	h.currentKey = ""
}

func (h *Handler) onEndObject() {
	h.output.WriteByte('}')
	if len(h.nameStack) > 0 {
		h.nameStack = h.nameStack[:len(h.nameStack)-1]
	}
	if len(h.frames) > 0 {
		h.frames = h.frames[:len(h.frames)-1]
	}
	h.afterValue()
}

func (h *Handler) onStartArray() {
	h.beforeValue()
	h.output.WriteByte('[')
	h.frames = append(h.frames, frame{kind: frameArray, first: true})
}

func (h *Handler) onEndArray() {
	h.output.WriteByte(']')
	if len(h.frames) > 0 {
		h.frames = h.frames[:len(h.frames)-1]
	}
	h.afterValue()
}

func (h *Handler) onKey(s string) {
	top := h.topFrame()
	if top != nil {
		if !top.first {
			h.output.WriteByte(',')
		}
		top.first = false
	}
	writeJSONString(&h.output, s)
	h.output.WriteByte(':')
	if top != nil {
		top.expectKey = false
	}
	h.currentKey = s

	stackTop := ""
	if len(h.nameStack) > 0 {
		stackTop = h.nameStack[len(h.nameStack)-1]
	}
	h.nextValueIsFilterField = (stackTop == "coreData" && (s == "id" || s == "speed")) ||
		(stackTop == "position" && (s == "latitude" || s == "longitude"))
}

func (h *Handler) onString(s string) bool {
	h.beforeValue()

	out := s
	if h.nextValueIsFilterField && h.currentKey == "id" {
		h.bsm.ID = s
		if h.redactionActive() {
			if repl, changed := h.cfg.Redactor.Redact(s); changed {
				out = repl
			}
		}
	}
	writeJSONString(&h.output, out)

	h.nextValueIsFilterField = false
	h.afterValue()
	return false
}

func (h *Handler) onRawNumber(lit string) bool {
	h.beforeValue()
	h.output.WriteString(lit)

	latched := false
	if h.nextValueIsFilterField {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			latched = h.latch(Other)
		} else {
			switch h.currentKey {
			case "speed":
				h.bsm.Velocity = f
				if h.velocityActive() && h.cfg.Velocity.Suppress(f) {
					latched = h.latch(Speed)
				}
			case "latitude":
				h.bsm.Lat = f
				h.latSet = true
			case "longitude":
				h.bsm.Lon = f
				h.lonSet = true
			}
			if (h.currentKey == "latitude" || h.currentKey == "longitude") &&
				h.latSet && h.lonSet && h.geofenceActive() && !h.withinGeofence() {
				latched = h.latch(Geoposition) || latched
			}
		}
	}

	h.nextValueIsFilterField = false
	h.afterValue()
	return latched
}

// latch sets the result on first transition away from Success and
// reports whether this call performed that transition.
func (h *Handler) latch(r Result) bool {
	if h.result != Success {
		return false
	}
	h.result = r
	return true
}

func (h *Handler) velocityActive() bool { return h.cfg.Flags&Velocity != 0 }
func (h *Handler) geofenceActive() bool { return h.cfg.Flags&Geofence != 0 }
func (h *Handler) redactionActive() bool {
	return h.cfg.Flags&IDRedact != 0 && h.cfg.Redactor != nil
}

func (h *Handler) withinGeofence() bool {
	if h.cfg.Geofence == nil {
		return true
	}
	p := geo.Point{Lat: h.bsm.Lat, Lon: h.bsm.Lon}
	for _, e := range quad.RetrieveElements(h.cfg.Geofence, p) {
		if e.Contains(p) {
			return true
		}
	}
	return false
}

func writeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
