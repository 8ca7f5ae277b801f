package youversion

import (
	"context"
	"reflect"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PandaWhoCodes/youversion/internal/fakeapi"
	"github.com/PandaWhoCodes/youversion/pkg/apierr"
	"github.com/PandaWhoCodes/youversion/pkg/result"
)

// parityArgs holds one fixture-backed argument list per API method,
// excluding the leading context.
var parityArgs = map[string][]any{
	"ListVersions":             {"en", (*ListVersionsOptions)(nil)},
	"GetVersion":               {111},
	"ListBooks":                {111, &ListBooksOptions{Canon: CanonNewTestament}},
	"GetBook":                  {111, "GEN"},
	"ListChapters":             {111, "JHN"},
	"GetChapter":               {111, "JHN", 3},
	"ListVerses":               {111, "JHN", 3},
	"GetVerse":                 {111, "JHN", 3, 16},
	"GetPassage":               {111, "GEN.1.1-3", &PassageOptions{Format: FormatHTML}},
	"ListLanguages":            {&ListLanguagesOptions{Country: "DE"}},
	"GetLanguage":              {"he"},
	"ListLicenses":             {111, "dev-42", (*ListLicensesOptions)(nil)},
	"ListOrganizations":        {111, &OrganizationOptions{AcceptLanguage: "de"}},
	"GetOrganization":          {biblicaID, (*OrganizationOptions)(nil)},
	"ListOrganizationVersions": {ebibleID, (*PageOptions)(nil)},
	"ListDailySelections":      {},
	"GetDailySelection":        {42},
}

func apiMethods(t reflect.Type) map[string]reflect.Method {
	out := make(map[string]reflect.Method)
	for i := range t.NumMethod() {
		m := t.Method(i)
		if m.Name != "Close" {
			out[m.Name] = m
		}
	}
	return out
}

func TestAsyncClient_MethodParity(t *testing.T) {
	syncMethods := apiMethods(reflect.TypeOf(&Client{}))
	asyncMethods := apiMethods(reflect.TypeOf(&AsyncClient{}))

	require.Len(t, asyncMethods, len(syncMethods))
	ctxType := reflect.TypeOf((*context.Context)(nil)).Elem()

	for name, sm := range syncMethods {
		t.Run(name, func(t *testing.T) {
			am, ok := asyncMethods[name]
			require.True(t, ok, "AsyncClient lacks %s", name)

			// In(0) is the receiver.
			require.Equal(t, sm.Type.NumIn(), am.Type.NumIn())
			assert.Equal(t, ctxType, sm.Type.In(1))
			for i := 1; i < sm.Type.NumIn(); i++ {
				assert.Equal(t, sm.Type.In(i), am.Type.In(i), "parameter %d", i)
			}

			require.Equal(t, 1, am.Type.NumOut())
			await, ok := am.Type.Out(0).MethodByName("Await")
			require.True(t, ok, "%s does not return a Future", name)
			require.Equal(t, sm.Type.NumOut(), await.Type.NumOut())
			for i := range sm.Type.NumOut() {
				assert.Equal(t, sm.Type.Out(i), await.Type.Out(i))
			}

			_, covered := parityArgs[name]
			assert.True(t, covered, "no parity fixture for %s", name)
		})
	}
}

func TestAsyncClient_ResultParity(t *testing.T) {
	c, _ := newTestClient(t)
	a := newTestAsync(t, c.http.BaseURL())
	ctx := context.Background()

	for name, args := range parityArgs {
		t.Run(name, func(t *testing.T) {
			in := []reflect.Value{reflect.ValueOf(ctx)}
			for _, arg := range args {
				in = append(in, reflect.ValueOf(arg))
			}

			syncOut := reflect.ValueOf(c).MethodByName(name).Call(in)
			future := reflect.ValueOf(a).MethodByName(name).Call(in)[0]
			asyncOut := future.MethodByName("Await").Call([]reflect.Value{reflect.ValueOf(ctx)})

			require.True(t, syncOut[1].IsNil(), "sync error: %v", syncOut[1])
			require.True(t, asyncOut[1].IsNil(), "async error: %v", asyncOut[1])
			assert.Equal(t, syncOut[0].Interface(), asyncOut[0].Interface())
		})
	}
}

func TestAsyncClient_DomainErrorParity(t *testing.T) {
	c, _ := newTestClient(t)
	a := newTestAsync(t, c.http.BaseURL())
	ctx := context.Background()

	want, err := c.GetVersion(ctx, 999999999)
	require.NoError(t, err)
	got, err := a.GetVersion(ctx, 999999999).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, apierr.IsNotFound(got.Err()))
}

func TestAsyncClient_InfrastructureErrorParity(t *testing.T) {
	c, fake := newTestClient(t)
	a := newTestAsync(t, c.http.BaseURL())
	fake.Fail("/v1/bibles/111", fakeapi.Failure{Status: 503, Body: `{"message":"maintenance"}`})
	ctx := context.Background()

	_, syncErr := c.GetVersion(ctx, 111)
	_, asyncErr := a.GetVersion(ctx, 111).Await(ctx)
	require.Error(t, syncErr)
	assert.Equal(t, syncErr, asyncErr)
	assert.True(t, apierr.IsServer(asyncErr))
}

func TestAsyncClient_Concurrent(t *testing.T) {
	_, url := startFake(t)
	a := newTestAsync(t, url)
	ctx := context.Background()

	days := []int{1, 2, 3, 4, 5, 6, 7, 8}
	futures := make([]*Future[result.Result[DailySelection]], len(days))
	for i, d := range days {
		futures[i] = a.GetDailySelection(ctx, d)
	}
	for i, f := range futures {
		res, err := f.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, days[i], res.Value().Day)
	}
}

func TestAsyncClient_Close(t *testing.T) {
	_, url := startFake(t)
	a := newTestAsync(t, url)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	ctx := context.Background()
	_, err := a.GetVersion(ctx, 111).Await(ctx)
	assert.ErrorIs(t, err, apierr.ErrClosed)
}

func TestFuture_AwaitCanceled(t *testing.T) {
	_, url := startFake(t, fakeapi.WithLatency(time.Second))
	a := newTestAsync(t, url)

	callCtx, cancelCall := context.WithCancel(context.Background())
	defer cancelCall()
	f := a.GetVersion(callCtx, 111)

	waitCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Await(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	cancelCall()
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("call did not stop after its context was canceled")
	}
	_, err = f.Await(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

type customPanic struct{ msg string }

func (p customPanic) Error() string { return p.msg }

func TestFuture_Panic(t *testing.T) {
	tests := map[string]any{
		"string":        "boom",
		"typed error":   customPanic{"boom"},
		"runtime error": nil,
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			f := spawn(context.Background(), func(context.Context) (int, error) {
				if value == nil {
					var m map[string]int
					m["x"] = 1
				}
				panic(value)
			})
			<-f.Done()

			var recovered any
			func() {
				defer func() { recovered = recover() }()
				_, _ = f.Await(context.Background())
			}()

			pe, ok := recovered.(*PanicError)
			require.True(t, ok, "got %T", recovered)
			if value == nil {
				var re runtime.Error
				assert.ErrorAs(t, pe, &re)
				return
			}
			assert.Equal(t, value, pe.Value)
			assert.Contains(t, pe.Error(), "youversion: async call panicked: boom")
		})
	}

	t.Run("unwrap", func(t *testing.T) {
		f := spawn(context.Background(), func(context.Context) (int, error) {
			panic(customPanic{"boom"})
		})
		<-f.Done()
		defer func() {
			pe, ok := recover().(*PanicError)
			require.True(t, ok)
			var cp customPanic
			require.ErrorAs(t, pe, &cp)
			assert.Equal(t, "boom", cp.msg)
		}()
		_, _ = f.Await(context.Background())
	})
}

func TestFuture_Value(t *testing.T) {
	f := spawn(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	})
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
