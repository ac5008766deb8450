package run

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/hancov/internal/config"
	"github.com/John-Robertt/hancov/internal/domain"
)

type recordObserver struct {
	startCalls int
	phases     []string
	loaded     []domain.InventoryInfo
	idx        []int
}

func (o *recordObserver) OnStart(eff config.EffectiveConfig) {
	o.startCalls++
}

func (o *recordObserver) OnInventoryLoaded(idx, total int, info domain.InventoryInfo, dur time.Duration) {
	o.idx = append(o.idx, idx)
	o.loaded = append(o.loaded, info)
}

func (o *recordObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.phases = append(o.phases, name)
}

func TestExecuteWithObserver_EmitsPhaseAndInventoryEvents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲乙")
	writeFile(t, filepath.Join(dir, "b.txt"), "")

	eff := baseConfig(dir, "a.txt", "b.txt")
	obs := &recordObserver{}
	if _, err := ExecuteWithObserver(context.Background(), eff, Env{Stdin: strings.NewReader("甲丙")}, obs); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	if obs.startCalls != 1 {
		t.Fatalf("期望 OnStart 调用 1 次，实际 %d", obs.startCalls)
	}
	wantPhases := []string{PhaseLoad, PhaseRead, PhaseAnalyze}
	if !reflect.DeepEqual(obs.phases, wantPhases) {
		t.Fatalf("阶段事件不符合预期：got=%v want=%v", obs.phases, wantPhases)
	}
	wantLoaded := []domain.InventoryInfo{{Label: "a", Size: 2}, {Label: "b", Size: 0}}
	if !reflect.DeepEqual(obs.loaded, wantLoaded) || !reflect.DeepEqual(obs.idx, []int{1, 2}) {
		t.Fatalf("字表事件不符合预期：loaded=%v idx=%v", obs.loaded, obs.idx)
	}
}

func TestExecuteWithObserver_NilObserver_SameResultAsExecute(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "甲乙")
	writeFile(t, filepath.Join(dir, "in.txt"), "甲乙丙\n丁")

	eff := baseConfig(dir, "a.txt")
	eff.Input = filepath.Join(dir, "in.txt")
	eff.PerLine = true

	a, err := Execute(context.Background(), eff, Env{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	b, err := ExecuteWithObserver(context.Background(), eff, Env{}, &recordObserver{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("observer 不应改变结果：\nExecute=%+v\nWithObs=%+v", a, b)
	}
}

func TestExecuteWithObserver_MissingFileEmitsNoPhase(t *testing.T) {
	dir := t.TempDir()

	obs := &recordObserver{}
	_, err := ExecuteWithObserver(context.Background(), baseConfig(dir, "nope.txt"), Env{}, obs)
	if Code(err) != domain.ErrCodeInputNotFound {
		t.Fatalf("期望 %q，实际 err=%v", domain.ErrCodeInputNotFound, err)
	}
	if len(obs.phases) != 0 || len(obs.loaded) != 0 {
		t.Fatalf("缺失文件时不应有阶段事件：phases=%v loaded=%v", obs.phases, obs.loaded)
	}
}
