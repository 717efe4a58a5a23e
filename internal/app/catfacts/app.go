package catfacts

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/roach88/corebridge/internal/core"
	"github.com/roach88/corebridge/internal/instant"
	"github.com/roach88/corebridge/internal/ir"
)

const (
	FactURL  = "https://catfact.ninja/fact"
	ImageURL = "https://aws.random.cat/meow"

	// StateKey is the key-value entry holding the persisted model.
	StateKey = "state"
)

// Capabilities used by the app.
const (
	CapHTTP     = "http"
	CapKeyValue = "key_value"
	CapPlatform = "platform"
	CapTime     = "time"
	CapRender   = "render"
)

// App implements core.App.
type App struct{}

var _ core.App = App{}

// Init returns the empty model.
func (App) Init() ir.Object {
	return ir.Obj(
		ir.O("fact", ir.String("")),
		ir.O("image_url", ir.String("")),
		ir.O("platform", ir.String("")),
		ir.O("fetches", ir.Int(0)),
	)
}

// Update applies one event.
func (App) Update(model ir.Object, ev ir.Event) (ir.Object, []core.Command, error) {
	switch ev.Name {
	case "clear":
		model["fact"] = ir.String("")
		model["image_url"] = ir.String("")
		delete(model, "fetched_at")
		return model, []core.Command{save(model), render()}, nil

	case "get":
		return model, []core.Command{
			core.Request(CapKeyValue, ir.Obj(ir.O("op", ir.String("get")), ir.O("key", ir.String(StateKey))), restoreFrom),
		}, nil

	case "fetch":
		n, _ := model.GetInt("fetches")
		model["fetches"] = ir.Int(n + 1)
		return model, []core.Command{
			core.Request(CapHTTP, httpGet(FactURL), factFrom),
			core.Request(CapHTTP, httpGet(ImageURL), imageFrom),
			core.Request(CapTime, ir.Obj(ir.O("op", ir.String("now"))), timeFrom),
		}, nil

	case "get_platform":
		return model, []core.Command{
			core.Request(CapPlatform, ir.Obj(), platformFrom),
		}, nil

	case "set_fact":
		fact, ok := ev.Payload.GetString("fact")
		if !ok {
			return nil, nil, fmt.Errorf("set_fact: missing fact")
		}
		model["fact"] = ir.String(fact)
		return model, []core.Command{save(model), render()}, nil

	case "set_image":
		url, ok := ev.Payload.GetString("url")
		if !ok {
			return nil, nil, fmt.Errorf("set_image: missing url")
		}
		model["image_url"] = ir.String(url)
		return model, []core.Command{save(model), render()}, nil

	case "set_platform":
		platform, ok := ev.Payload.GetString("platform")
		if !ok {
			return nil, nil, fmt.Errorf("set_platform: missing platform")
		}
		model["platform"] = ir.String(platform)
		return model, []core.Command{render()}, nil

	case "set_time":
		at, ok := ev.Payload.GetObject("instant")
		if !ok {
			return nil, nil, fmt.Errorf("set_time: missing instant")
		}
		if _, err := DecodeInstant(at); err != nil {
			return nil, nil, fmt.Errorf("set_time: %w", err)
		}
		model["fetched_at"] = at
		return model, []core.Command{save(model), render()}, nil

	case "restore":
		for _, key := range []string{"fact", "image_url"} {
			if s, ok := ev.Payload.GetString(key); ok {
				model[key] = ir.String(s)
			}
		}
		if at, ok := ev.Payload.GetObject("fetched_at"); ok {
			if _, err := DecodeInstant(at); err != nil {
				return nil, nil, fmt.Errorf("restore: %w", err)
			}
			model["fetched_at"] = at
		}
		return model, []core.Command{render()}, nil

	default:
		return nil, nil, fmt.Errorf("unknown event %q", ev.Name)
	}
}

// View projects the model for display.
func (App) View(model ir.Object) ir.Object {
	fact, _ := model.GetString("fact")
	n, _ := model.GetInt("fetches")
	if fact != "" {
		fact = fmt.Sprintf("(%d) %s", n, fact)
	}
	image, _ := model.GetString("image_url")
	platform, _ := model.GetString("platform")
	if platform != "" {
		platform = "Hello " + platform
	}

	updated := ""
	if at, ok := model.GetObject("fetched_at"); ok {
		if i, err := DecodeInstant(at); err == nil {
			if t, err := i.ToTime(); err == nil {
				updated = t.Format(time.RFC3339Nano)
			} else {
				updated = i.String()
			}
		}
	}

	return ir.Obj(
		ir.O("fact", ir.String(fact)),
		ir.O("image_url", ir.String(image)),
		ir.O("platform", ir.String(platform)),
		ir.O("updated_at", ir.String(updated)),
	)
}

func render() core.Command {
	return core.Notify(CapRender, nil)
}

// save persists the fields restored by "restore".
func save(model ir.Object) core.Command {
	state := ir.Obj(
		ir.O("fact", model["fact"]),
		ir.O("image_url", model["image_url"]),
	)
	if at, ok := model["fetched_at"]; ok {
		state["fetched_at"] = at
	}
	return core.Notify(CapKeyValue, ir.Obj(
		ir.O("op", ir.String("set")),
		ir.O("key", ir.String(StateKey)),
		ir.O("value", state),
	))
}

func httpGet(url string) ir.Object {
	return ir.Obj(ir.O("method", ir.String("GET")), ir.O("url", ir.String(url)))
}

// httpBody returns the body of a 200 response. ok is false for any other
// status, which resolves the request without an update.
func httpBody(resp ir.Value) (body ir.Object, ok bool, err error) {
	obj, isObj := resp.(ir.Object)
	if !isObj {
		return nil, false, fmt.Errorf("http: response is %T, want object", resp)
	}
	status, _ := obj.GetInt("status")
	if status != 200 {
		return nil, false, nil
	}
	body, isObj = obj.GetObject("body")
	if !isObj {
		return nil, false, fmt.Errorf("http: body is not an object")
	}
	return body, true, nil
}

func factFrom(resp ir.Value) (ir.Event, error) {
	body, ok, err := httpBody(resp)
	if err != nil || !ok {
		return ir.Event{}, err
	}
	fact, found := body.GetString("fact")
	if !found {
		return ir.Event{}, fmt.Errorf("http: fact body missing \"fact\"")
	}
	return ir.NewEvent("set_fact", ir.O("fact", ir.String(fact))), nil
}

func imageFrom(resp ir.Value) (ir.Event, error) {
	body, ok, err := httpBody(resp)
	if err != nil || !ok {
		return ir.Event{}, err
	}
	file, found := body.GetString("file")
	if !found {
		return ir.Event{}, fmt.Errorf("http: image body missing \"file\"")
	}
	return ir.NewEvent("set_image", ir.O("url", ir.String(file))), nil
}

func timeFrom(resp ir.Value) (ir.Event, error) {
	obj, ok := resp.(ir.Object)
	if !ok {
		return ir.Event{}, fmt.Errorf("time: response is %T, want object", resp)
	}
	return ir.NewEvent("set_time", ir.O("instant", obj)), nil
}

func platformFrom(resp ir.Value) (ir.Event, error) {
	s, ok := resp.(ir.String)
	if !ok {
		return ir.Event{}, fmt.Errorf("platform: response is %T, want string", resp)
	}
	return ir.NewEvent("set_platform", ir.O("platform", s)), nil
}

// restoreFrom treats an empty object as "nothing stored".
func restoreFrom(resp ir.Value) (ir.Event, error) {
	obj, ok := resp.(ir.Object)
	if !ok {
		return ir.Event{}, fmt.Errorf("key_value: response is %T, want object", resp)
	}
	if len(obj) == 0 {
		return ir.Event{}, nil
	}
	return ir.Event{Name: "restore", Payload: obj}, nil
}

// DecodeInstant converts an IR instant record into a validated Instant.
func DecodeInstant(v ir.Object) (instant.Instant, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return instant.Instant{}, err
	}
	var i instant.Instant
	if err := json.Unmarshal(data, &i); err != nil {
		return instant.Instant{}, err
	}
	return i, nil
}

// InstantValue converts an Instant into its IR record.
//
// IR integers are int64, so on this wire seconds are bounded by
// math.MaxInt64; a larger Instant fails with INVALID_INSTANT.
func InstantValue(i instant.Instant) (ir.Object, error) {
	if i.Seconds() > math.MaxInt64 {
		return nil, &instant.Error{
			Code:    instant.CodeInvalidInstant,
			Message: fmt.Sprintf("seconds %d exceed the IR integer range (max %d)", i.Seconds(), int64(math.MaxInt64)),
		}
	}
	data, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	v, err := ir.UnmarshalValue(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(ir.Object)
	if !ok {
		return nil, fmt.Errorf("instant encoded as %T", v)
	}
	return obj, nil
}
