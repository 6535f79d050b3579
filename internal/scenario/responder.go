package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jwtpizza/pizza-e2e/internal/contract"
	"github.com/jwtpizza/pizza-e2e/internal/jsonmatch"
)

// Signer mints and checks order tokens.
type Signer interface {
	Sign(claims map[string]any) (string, error)
	Verify(token string) (map[string]any, error)
}

// Request is the transport-neutral view of an intercepted request.
type Request struct {
	Method string
	URL    string
	Body   []byte
}

// Reply is the canned answer for a request. Violation is set when the
// request broke the route's expectations; the reply is still served.
type Reply struct {
	Status    int
	Body      []byte
	Violation error
}

// Responder turns matched routes into replies and records what happened.
type Responder struct {
	Signer   Signer
	Recorder *Recorder
}

// Answer replies to req given the outcome of Match or MatchPattern.
func (r *Responder) Answer(route *Route, matchErr error, req Request) Reply {
	if matchErr != nil {
		var me *MethodError
		if errors.As(matchErr, &me) {
			r.violate(me)
			return messageReply(http.StatusMethodNotAllowed, me.Error(), me)
		}
		if r.Recorder != nil {
			r.Recorder.Miss(Hit{Method: req.Method, URL: req.URL, Body: string(req.Body), Status: http.StatusNotFound})
		}
		return messageReply(http.StatusNotFound, "unknown endpoint", nil)
	}

	reply := r.Respond(route, req)
	if reply.Violation != nil {
		r.violate(reply.Violation)
	}
	if r.Recorder != nil {
		r.Recorder.Record(Hit{Route: route.Name, Method: req.Method, URL: req.URL, Body: string(req.Body), Status: reply.Status})
	}
	return reply
}

func (r *Responder) violate(err error) {
	if r.Recorder != nil {
		r.Recorder.Violate(err)
	}
}

// Respond builds the reply for route without recording anything.
func (r *Responder) Respond(route *Route, req Request) Reply {
	var violation error
	if route.Expect.Body != nil {
		if err := jsonmatch.SubsetJSON(route.Expect.Body, req.Body); err != nil {
			violation = fmt.Errorf("%s %s (route %s): request body: %w", req.Method, req.URL, route.Name, err)
		}
	}

	var body any
	switch route.kind() {
	case KindVerify:
		v, err := r.verify(req)
		if err != nil {
			return messageReply(http.StatusInternalServerError, err.Error(),
				errors.Join(violation, fmt.Errorf("route %s: %w", route.Name, err)))
		}
		body = v
	default:
		b, err := r.sign(route)
		if err != nil {
			return messageReply(http.StatusInternalServerError, err.Error(),
				errors.Join(violation, fmt.Errorf("route %s: %w", route.Name, err)))
		}
		body = b
	}

	if route.Contract != "" {
		if err := contract.ValidateValue(route.Contract, body); err != nil {
			violation = errors.Join(violation, fmt.Errorf("route %s: reply: %w", route.Name, err))
		}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return messageReply(http.StatusInternalServerError, "failed to encode response",
			errors.Join(violation, fmt.Errorf("route %s: %w", route.Name, err)))
	}
	return Reply{Status: route.Status(), Body: raw, Violation: violation}
}

func (r *Responder) sign(route *Route) (any, error) {
	field := route.Response.SignField
	src, ok := route.Response.Body.(map[string]any)
	if field == "" || r.Signer == nil || !ok {
		return route.Response.Body, nil
	}
	claims := make(map[string]any, len(src))
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
		if k != field {
			claims[k] = v
		}
	}
	token, err := r.Signer.Sign(claims)
	if err != nil {
		return nil, err
	}
	out[field] = token
	return out, nil
}

func (r *Responder) verify(req Request) (map[string]any, error) {
	if r.Signer == nil {
		return nil, errors.New("no signer configured for order verification")
	}
	var in struct {
		JWT string `json:"jwt"`
	}
	if err := json.Unmarshal(req.Body, &in); err != nil || in.JWT == "" {
		return map[string]any{"message": "invalid", "payload": map[string]any{"error": "missing jwt"}}, nil
	}
	claims, err := r.Signer.Verify(in.JWT)
	if err != nil {
		return map[string]any{"message": "invalid", "payload": map[string]any{"error": err.Error()}}, nil
	}
	return map[string]any{"message": "valid", "payload": claims}, nil
}

func messageReply(status int, msg string, violation error) Reply {
	raw, _ := json.Marshal(map[string]string{"message": msg})
	return Reply{Status: status, Body: raw, Violation: violation}
}
