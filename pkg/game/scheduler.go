package game

// TaskID 延迟任务的句柄；0 表示无效
type TaskID uint64

// scheduledTask 单个延迟或周期任务
type scheduledTask struct {
	id       TaskID
	name     string
	due      float64
	interval float64
	fn       func()
}

// Scheduler 延迟任务所有者
//
// 所有延迟动作（蓄力振荡、结算等待、重置延迟、提示隐藏）都登记在这里，
// 并以会话时钟（秒）驱动，而不是墙钟定时器。
// 命名任务同一时间只保留一个：用相同名字重新登记会取消旧任务。
//
// Scheduler 只在游戏循环内使用，不是并发安全的。
type Scheduler struct {
	now    float64
	nextID TaskID
	tasks  []*scheduledTask
	named  map[string]TaskID
}

// NewScheduler 创建调度器，时钟从 0 开始
func NewScheduler() *Scheduler {
	return &Scheduler{
		named: make(map[string]TaskID),
	}
}

// Now 当前会话时钟（秒）
func (s *Scheduler) Now() float64 {
	return s.now
}

// After 在 delay 秒后执行一次 fn
func (s *Scheduler) After(delay float64, fn func()) TaskID {
	return s.add("", delay, 0, fn)
}

// Every 每隔 interval 秒执行一次 fn，直到被取消
func (s *Scheduler) Every(interval float64, fn func()) TaskID {
	return s.add("", interval, interval, fn)
}

// AfterNamed 命名的一次性任务；会取消同名的待执行任务
func (s *Scheduler) AfterNamed(name string, delay float64, fn func()) TaskID {
	s.CancelNamed(name)
	return s.add(name, delay, 0, fn)
}

// EveryNamed 命名的周期任务；会取消同名的待执行任务
func (s *Scheduler) EveryNamed(name string, interval float64, fn func()) TaskID {
	s.CancelNamed(name)
	return s.add(name, interval, interval, fn)
}

func (s *Scheduler) add(name string, delay, interval float64, fn func()) TaskID {
	if delay < 0 {
		delay = 0
	}
	s.nextID++
	t := &scheduledTask{
		id:       s.nextID,
		name:     name,
		due:      s.now + delay,
		interval: interval,
		fn:       fn,
	}
	s.tasks = append(s.tasks, t)
	if name != "" {
		s.named[name] = t.id
	}
	return t.id
}

// Cancel 取消任务；返回任务此前是否处于待执行状态
func (s *Scheduler) Cancel(id TaskID) bool {
	for i, t := range s.tasks {
		if t.id != id {
			continue
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		if t.name != "" && s.named[t.name] == id {
			delete(s.named, t.name)
		}
		return true
	}
	return false
}

// CancelNamed 取消命名任务
func (s *Scheduler) CancelNamed(name string) bool {
	id, ok := s.named[name]
	if !ok {
		return false
	}
	return s.Cancel(id)
}

// Pending 命名任务是否待执行
func (s *Scheduler) Pending(name string) bool {
	_, ok := s.named[name]
	return ok
}

// Len 待执行任务数量
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Advance 推进时钟 dt 秒，按到期顺序执行到期任务
//
// 回调内登记的新任务若在本次推进范围内到期，也会在本次执行。
// 周期任务在一次大步长推进中可能执行多次。
func (s *Scheduler) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt

	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		if next.due > s.now {
			s.now = next.due
		}

		if next.interval > 0 {
			next.due += next.interval
		} else {
			s.Cancel(next.id)
		}
		next.fn()
	}

	s.now = target
}

// nextDue 返回最早到期（且不晚于 target）的任务；同时到期按登记顺序
func (s *Scheduler) nextDue(target float64) *scheduledTask {
	var best *scheduledTask
	for _, t := range s.tasks {
		if t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.id < best.id) {
			best = t
		}
	}
	return best
}
