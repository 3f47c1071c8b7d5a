package dashboard

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqall01/alertR/internal/models"
)

func fixtureStore() *Store {
	st := NewStore(time.Unix(0, 0))
	st.Apply(&models.Response{
		Internals: []models.Internal{{Type: models.InternalMsgTime, Value: 1700000000}},
		Options: []models.Option{
			{Type: models.OptionAlertSystemActive, Value: 1},
			{Type: models.OptionProfile, Value: 1},
		},
		Profiles: []models.Profile{{ProfileID: 0, Name: "home"}, {ProfileID: 1, Name: "away"}},
		Nodes: []models.Node{
			{ID: 1, Hostname: "pi", NodeType: "sensor", Instance: "sensorClientRaspberryPi", Connected: 1, Persistent: 1, Version: 0.9, Rev: 1},
			{ID: 2, Hostname: "cam", NodeType: "sensor", Instance: "sensorClientWebcam", Connected: 0, Persistent: 1, Version: 0.9, Rev: 1},
		},
		Sensors: []models.Sensor{
			{ID: 1, NodeID: 1, Description: "window", State: 1, AlertLevels: []int{1}, Data: models.FloatData(21.5)},
			{ID: 2, NodeID: 2, Description: "Camera", AlertLevels: []int{}},
			{ID: 3, NodeID: 1, Description: "door", ErrorState: models.SensorErrorTimeout, ErrorMsg: "no reply"},
		},
		AlertLevels: []models.AlertLevel{
			{AlertLevel: 1, Name: "intrusion", InstrumentationSettings: &models.InstrumentationSettings{InstrumentationActive: 1, Profiles: []int{1}}},
		},
		SensorAlerts: []models.SensorAlert{
			{ID: 1, Description: "window", State: 1, TimeReceived: 1700000000, Data: models.NoData()},
		},
		Events: []models.Event{
			{ID: 7, TimeOccurred: 1700000001, Type: models.EventChangeOption,
				Detail: &models.ChangeOptionEvent{OptionType: models.OptionProfile, OldValue: 0, NewValue: 1}},
		},
	}, time.Unix(1700000000, 0))
	st.CheckOnline(time.Unix(1700000000, 0), time.Minute)
	return st
}

func testBuilder() PageBuilder {
	return PageBuilder{Settings: DefaultSettings(), Location: time.UTC}
}

func TestPageBuilder_Status(t *testing.T) {
	p := testBuilder().Build(ViewOverview, fixtureStore())

	assert.True(t, p.Online)
	assert.True(t, p.AlertSystemActive)
	assert.Equal(t, 1, p.ActiveProfile)
	assert.Equal(t, "2023-11-14 22:13:20", p.LastMsgTime)
	assert.Contains(t, p.Status, Cell{Text: "profile away", Class: ClassNeutral})
	assert.Contains(t, p.Status, Cell{Text: "alert system activated", Class: ClassNormal})
	assert.Empty(t, p.Banner)
}

func TestPageBuilder_Sensors(t *testing.T) {
	p := testBuilder().Build(ViewSensors, fixtureStore())
	require.Len(t, p.Tables, 1)
	rows := p.Tables[0].Rows
	require.Len(t, rows, 3)

	// 忽略大小写排序: Camera, door, window
	assert.Equal(t, "Camera", rows[0][0].Text)
	assert.Equal(t, ClassFail, rows[0][1].Class)
	assert.Equal(t, ClassError, rows[1][1].Class)
	assert.Equal(t, "TimeoutError: no reply", rows[1][1].Text)
	assert.Equal(t, ClassTriggered, rows[2][1].Class)
	assert.Equal(t, "21.5", rows[2][3].Text)
	assert.Equal(t, "intrusion", rows[2][5].Text)
}

func TestPageBuilder_NodesAndAlertLevels(t *testing.T) {
	st := fixtureStore()
	b := testBuilder()

	nodes := b.Build(ViewNodes, st).Tables[0].Rows
	require.Len(t, nodes, 2)
	assert.Equal(t, "cam", nodes[0][0].Text)
	assert.Equal(t, ClassFail, nodes[0][5].Class)
	assert.Equal(t, ClassNormal, nodes[1][5].Class)

	levels := b.Build(ViewAlertLevels, st).Tables[0]
	assert.Equal(t, []string{"Level", "Name", "Instrumentation", "Profiles"}, levels.Columns)
	assert.Equal(t, "away", levels.Rows[0][3].Text)
}

func TestPageBuilder_LegacyVersionCell(t *testing.T) {
	st := NewStore(time.Unix(0, 0))
	st.Apply(&models.Response{Nodes: []models.Node{
		{ID: 1, Hostname: "old", Connected: 1, Version: 0.5, Rev: 0,
			NodeUpdateInfo: &models.NodeUpdateInfo{NewestVersion: 0.501, NewestRev: 0}},
	}}, time.Unix(0, 0))

	b := testBuilder()
	b.Settings.Legacy = true
	row := b.Build(ViewNodes, st).Tables[0].Rows[0]
	assert.Equal(t, "0.500-0", row[4].Text)
	assert.Equal(t, ClassFail, row[4].Class)
}

func TestPageBuilder_EventsAndBanner(t *testing.T) {
	st := fixtureStore()
	st.MarkFailed(assert.AnError)

	p := testBuilder().Build(ViewEvents, st)
	assert.Contains(t, p.Banner, "Server unreachable")
	assert.Equal(t, "profile: 0 -> 1", p.Tables[0].Rows[0][2].Text)
}

func TestPageBuilder_DoesNotReorderCache(t *testing.T) {
	st := fixtureStore()
	testBuilder().Build(ViewSensors, st)
	assert.Equal(t, "window", st.Data.Sensors[0].Description)
}

func TestPageBuilder_RenderTwiceIsIdentical(t *testing.T) {
	st := fixtureStore()
	b := testBuilder()

	for _, v := range Views {
		first := b.Build(v, st)
		second := b.Build(v, st)
		assert.Equal(t, first, second, "view %s", v)

		var t1, t2 bytes.Buffer
		require.NoError(t, NewTextEncoder(&t1, ColorAlways).Render(first))
		require.NoError(t, NewTextEncoder(&t2, ColorAlways).Render(second))
		assert.Equal(t, t1.Bytes(), t2.Bytes(), "view %s", v)

		var h1, h2 bytes.Buffer
		enc := HTMLEncoder{Refresh: 10 * time.Second, Actions: true}
		require.NoError(t, enc.Encode(&h1, first))
		require.NoError(t, enc.Encode(&h2, second))
		assert.Equal(t, h1.Bytes(), h2.Bytes(), "view %s", v)
	}
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		event models.Event
		want  string
	}{
		{models.Event{Detail: &models.ConnectedChangeEvent{Hostname: "pi", NodeType: "sensor", Instance: "x", Connected: 0}}, "pi (sensor/x) disconnected"},
		{models.Event{Detail: &models.SensorAlertEvent{Description: "door", State: 1, Data: models.IntData(3)}}, "door triggered 3"},
		{models.Event{Detail: &models.DeleteSensorEvent{Description: "door"}}, "door"},
		{models.Event{Type: "unknown"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DescribeEvent(tt.event))
	}
}

func TestTextEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewTextEncoder(&buf, ColorNever)
	require.NoError(t, enc.Render(testBuilder().Build(ViewNodes, fixtureStore())))

	out := buf.String()
	assert.NotContains(t, out, "\033[")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines[0], "online")
	assert.Contains(t, out, "Hostname  Type")
	assert.Contains(t, out, "cam       sensor")
}

func TestTextEncoder_Color(t *testing.T) {
	var buf bytes.Buffer
	enc := NewTextEncoder(&buf, ColorAlways)
	require.NoError(t, enc.Render(testBuilder().Build(ViewNodes, fixtureStore())))
	assert.Contains(t, buf.String(), ansi[ClassFail]+"no"+ansiReset)

	// auto 模式下 buffer 不是终端
	buf.Reset()
	require.NoError(t, NewTextEncoder(&buf, ColorAuto).Render(Page{Title: "x"}))
	assert.Equal(t, "x\n", buf.String())
}

func TestHTMLEncoder(t *testing.T) {
	st := fixtureStore()
	st.Data.Sensors[0].Description = "<script>"

	var buf bytes.Buffer
	enc := HTMLEncoder{Refresh: 10 * time.Second, Actions: true}
	require.NoError(t, enc.Encode(&buf, testBuilder().Build(ViewSensors, st)))

	out := buf.String()
	assert.Contains(t, out, `<meta http-equiv="refresh" content="10">`)
	assert.Contains(t, out, `class="triggeredTd"`)
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "activate=0")
	assert.Contains(t, out, "profilechange=0")
	assert.NotContains(t, out, "profilechange=1")
}
