package catfacts

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/corebridge/internal/core"
	"github.com/roach88/corebridge/internal/instant"
	"github.com/roach88/corebridge/internal/ir"
)

type driver struct {
	t    *testing.T
	core *core.Core
}

func newDriver(t *testing.T) *driver {
	t.Helper()
	return &driver{t: t, core: core.New(App{})}
}

func (d *driver) event(data string) string {
	d.t.Helper()
	out, err := d.core.ProcessEvent(context.Background(), []byte(data))
	require.NoError(d.t, err)
	return string(out)
}

func (d *driver) respond(id uint32, data string) string {
	d.t.Helper()
	out, err := d.core.HandleResponse(context.Background(), id, []byte(data))
	require.NoError(d.t, err)
	return string(out)
}

func (d *driver) view() string {
	d.t.Helper()
	out, err := d.core.View(context.Background())
	require.NoError(d.t, err)
	return string(out)
}

func TestApp_InitialView(t *testing.T) {
	d := newDriver(t)
	assert.Equal(t, `{"fact":"","image_url":"","platform":"","updated_at":""}`, d.view())
}

func TestApp_FetchFlow(t *testing.T) {
	d := newDriver(t)

	assert.Equal(t,
		`[{"effect":{"capability":"http","operation":{"method":"GET","url":"https://catfact.ninja/fact"}},"id":1},`+
			`{"effect":{"capability":"http","operation":{"method":"GET","url":"https://aws.random.cat/meow"}},"id":2},`+
			`{"effect":{"capability":"time","operation":{"op":"now"}},"id":3}]`,
		d.event(`{"name":"fetch"}`))

	assert.Equal(t,
		`[{"effect":{"capability":"key_value","operation":{"key":"state","op":"set","value":{"fact":"Cats sleep a lot","image_url":""}}},"id":4},`+
			`{"effect":{"capability":"render","operation":{}},"id":5}]`,
		d.respond(1, `{"body":{"fact":"Cats sleep a lot","length":16},"status":200}`))

	out := d.respond(3, `{"nanos":10,"seconds":1000000000}`)
	batch, err := ir.DecodeEffects([]byte(out))
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, CapKeyValue, batch[0].Effect.Capability)
	assert.Equal(t, CapRender, batch[1].Effect.Capability)

	assert.Equal(t, "[]", d.respond(2, `{"body":{},"status":503}`), "non-200 resolves without update")

	assert.Equal(t,
		`{"fact":"(1) Cats sleep a lot","image_url":"","platform":"","updated_at":"2001-09-09T01:46:40.00000001Z"}`,
		d.view())
	assert.Equal(t, 0, d.core.PendingCount())
}

func TestApp_Image(t *testing.T) {
	d := newDriver(t)
	d.event(`{"name":"fetch"}`)
	d.respond(2, `{"body":{"file":"https://purr.objects-us-east-1.dream.io/i/cat.jpg"},"status":200}`)

	assert.Equal(t,
		`{"fact":"","image_url":"https://purr.objects-us-east-1.dream.io/i/cat.jpg","platform":"","updated_at":""}`,
		d.view())
}

func TestApp_Platform(t *testing.T) {
	d := newDriver(t)

	assert.Equal(t,
		`[{"effect":{"capability":"platform","operation":{}},"id":1}]`,
		d.event(`{"name":"get_platform"}`))
	assert.Equal(t,
		`[{"effect":{"capability":"render","operation":{}},"id":2}]`,
		d.respond(1, `"iOS"`))
	assert.Contains(t, d.view(), `"platform":"Hello iOS"`)
}

func TestApp_GetAndRestore(t *testing.T) {
	d := newDriver(t)

	assert.Equal(t,
		`[{"effect":{"capability":"key_value","operation":{"key":"state","op":"get"}},"id":1}]`,
		d.event(`{"name":"get"}`))
	assert.Equal(t, "[]", d.respond(1, `{}`), "nothing stored")

	d.event(`{"name":"get"}`)
	assert.Equal(t,
		`[{"effect":{"capability":"render","operation":{}},"id":3}]`,
		d.respond(2, `{"fact":"Cats have whiskers","fetched_at":{"nanos":0,"seconds":0},"image_url":"https://x/cat.png"}`))
	assert.Equal(t,
		`{"fact":"(0) Cats have whiskers","image_url":"https://x/cat.png","platform":"","updated_at":"1970-01-01T00:00:00Z"}`,
		d.view())
}

func TestApp_Clear(t *testing.T) {
	d := newDriver(t)
	d.event(`{"name":"fetch"}`)
	d.respond(1, `{"body":{"fact":"f"},"status":200}`)
	d.respond(3, `{"nanos":0,"seconds":5}`)

	assert.Equal(t,
		`[{"effect":{"capability":"key_value","operation":{"key":"state","op":"set","value":{"fact":"","image_url":""}}},"id":8},`+
			`{"effect":{"capability":"render","operation":{}},"id":9}]`,
		d.event(`{"name":"clear"}`))
	assert.Equal(t, `{"fact":"","image_url":"","platform":"","updated_at":""}`, d.view())
}

func TestApp_Failures(t *testing.T) {
	t.Run("unknown event", func(t *testing.T) {
		d := newDriver(t)
		_, err := d.core.ProcessEvent(context.Background(), []byte(`{"name":"purr"}`))
		assert.True(t, core.HasCode(err, core.ErrCodeUpdateFailed))
	})

	t.Run("invalid instant from host clock", func(t *testing.T) {
		d := newDriver(t)
		d.event(`{"name":"fetch"}`)
		_, err := d.core.HandleResponse(context.Background(), 3, []byte(`{"nanos":1000000000,"seconds":1}`))
		assert.True(t, core.HasCode(err, core.ErrCodeUpdateFailed))
		assert.Equal(t, 3, d.core.PendingCount())
	})

	t.Run("platform must be a string", func(t *testing.T) {
		d := newDriver(t)
		d.event(`{"name":"get_platform"}`)
		_, err := d.core.HandleResponse(context.Background(), 1, []byte(`42`))
		assert.True(t, core.HasCode(err, core.ErrCodeUpdateFailed))
	})

	t.Run("http response must be an object", func(t *testing.T) {
		d := newDriver(t)
		d.event(`{"name":"fetch"}`)
		_, err := d.core.HandleResponse(context.Background(), 1, []byte(`"nope"`))
		assert.True(t, core.HasCode(err, core.ErrCodeUpdateFailed))
	})
}

func TestApp_UpdatedAtBeyondCalendar(t *testing.T) {
	d := newDriver(t)
	d.event(`{"name":"fetch"}`)
	d.respond(3, `{"nanos":5,"seconds":253402300800}`)

	assert.Contains(t, d.view(), `"updated_at":"253402300800.000000005s"`)
}

func TestInstantValue_RoundTrip(t *testing.T) {
	i, err := instant.New(1_000_000_000, 10)
	require.NoError(t, err)

	v, err := InstantValue(i)
	require.NoError(t, err)
	assert.Equal(t, ir.Obj(ir.O("nanos", ir.Int(10)), ir.O("seconds", ir.Int(1_000_000_000))), v)

	back, err := DecodeInstant(v)
	require.NoError(t, err)
	assert.Equal(t, i, back)
}

func TestInstantValue_SecondsBoundary(t *testing.T) {
	largest, err := instant.New(math.MaxInt64, 999_999_999)
	require.NoError(t, err)
	v, err := InstantValue(largest)
	require.NoError(t, err)
	back, err := DecodeInstant(v)
	require.NoError(t, err)
	assert.Equal(t, largest, back)

	tooLarge, err := instant.New(1<<63, 0)
	require.NoError(t, err, "any seconds value is a valid Instant")
	_, err = InstantValue(tooLarge)
	assert.True(t, instant.IsInvalidInstant(err))
}

func TestApp_TimeResponseSecondsBoundary(t *testing.T) {
	d := newDriver(t)
	d.event(`{"name":"fetch"}`)
	d.respond(3, `{"nanos":0,"seconds":9223372036854775807}`)
	assert.Contains(t, d.view(), `"updated_at":"9223372036854775807.000000000s"`)

	d = newDriver(t)
	d.event(`{"name":"fetch"}`)
	_, err := d.core.HandleResponse(context.Background(), 3, []byte(`{"nanos":0,"seconds":9223372036854775808}`))
	assert.True(t, core.IsDecodeError(err), "integers beyond int64 are not IR values")
}

func TestDecodeInstant_Rejects(t *testing.T) {
	_, err := DecodeInstant(ir.Obj(ir.O("nanos", ir.Int(1_000_000_000)), ir.O("seconds", ir.Int(1))))
	assert.True(t, instant.IsInvalidInstant(err))

	_, err = DecodeInstant(ir.Obj(ir.O("seconds", ir.Int(1))))
	assert.Error(t, err, "nanos is required")
}
