package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datalens/internal/analysis"
	"github.com/KaramelBytes/datalens/internal/dataset"
)

func TestWorkerAnswersEachRequestOnce(t *testing.T) {
	w := NewWorker(0, nil)
	defer w.Close()
	ctx := testContext(t)

	for seq := uint64(1); seq <= 3; seq++ {
		msg, err := encodeRequest(Request{Seq: seq, Data: salesRows(), Config: sumByRegion()})
		require.NoError(t, err)
		require.NoError(t, w.Send(ctx, msg))

		resp, err := decodeResponse(<-w.Responses())
		require.NoError(t, err)
		assert.Equal(t, seq, resp.Seq)
		assert.Equal(t, StatusSuccess, resp.Status)
		require.Len(t, resp.Data, 3)
		assert.Equal(t, "A", resp.Data[0].Name)
	}
}

func TestWorkerMalformedRequest(t *testing.T) {
	w := NewWorker(1, nil)
	defer w.Close()
	ctx := testContext(t)

	require.NoError(t, w.Send(ctx, []byte(`{"seq":9,"data":"not rows"}`)))
	resp, err := decodeResponse(<-w.Responses())
	require.NoError(t, err)
	assert.Equal(t, uint64(9), resp.Seq)
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "decode request")
}

func TestWorkerCloseStopsSends(t *testing.T) {
	w := NewWorker(0, nil)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Send(context.Background(), []byte(`{}`)), ErrClosed)
	_, ok := <-w.Responses()
	assert.False(t, ok)
}

func TestRequestCodecPreservesValueKinds(t *testing.T) {
	in := Request{Seq: 4, Data: []dataset.Row{{
		"n": dataset.Number(1.5),
		"s": dataset.String("1.5"),
		"b": dataset.Bool(true),
		"z": dataset.Null(),
	}}, Config: sumByRegion()}
	b, err := encodeRequest(in)
	require.NoError(t, err)
	out, err := decodeRequest(b)
	require.NoError(t, err)
	require.Len(t, out.Data, 1)
	assert.Equal(t, dataset.KindNumber, out.Data[0]["n"].Kind())
	assert.Equal(t, dataset.KindString, out.Data[0]["s"].Kind())
	assert.Equal(t, dataset.KindBool, out.Data[0]["b"].Kind())
	assert.True(t, out.Data[0]["z"].IsMissing())
	assert.Equal(t, in.Config, out.Config)
}

func TestDecodeResponseRejectsUnknownStatus(t *testing.T) {
	_, err := decodeResponse([]byte(`{"seq":1,"status":"pending"}`))
	assert.Error(t, err)
}

func TestWorkerReportsPanicAndKeepsServing(t *testing.T) {
	calls := 0
	w := newWorker(2, nil, func(rows []dataset.Row, cfg analysis.ChartConfig) ([]analysis.AggregatedPoint, error) {
		calls++
		if calls == 1 {
			var points []analysis.AggregatedPoint
			_ = points[3]
		}
		return analysis.Aggregate(rows, cfg)
	})
	defer w.Close()
	ctx := testContext(t)

	for seq := uint64(1); seq <= 2; seq++ {
		msg, err := encodeRequest(Request{Seq: seq, Data: salesRows(), Config: sumByRegion()})
		require.NoError(t, err)
		require.NoError(t, w.Send(ctx, msg))
	}

	first, err := decodeResponse(<-w.Responses())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, StatusError, first.Status)
	assert.Contains(t, first.Error, "aggregate failed:")
	assert.Empty(t, first.Data)

	second, err := decodeResponse(<-w.Responses())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Seq)
	assert.Equal(t, StatusSuccess, second.Status)
	assert.Len(t, second.Data, 3)
}
