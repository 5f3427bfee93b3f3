package bot

import (
	"context"
	"sync"
)

type job struct {
	chatID int64
	text   string
}

// userQueue - необработанные сообщения одного пользователя.
// Очередь не ограничена, поэтому dispatch никогда не блокируется.
type userQueue struct {
	jobs []job
}

// dispatcher раздает сообщения по воркерам: по одному на пользователя с
// необработанными сообщениями. Порядок внутри пользователя сохраняется,
// разные пользователи обрабатываются параллельно.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64]*userQueue
	wg     sync.WaitGroup

	handle func(ctx context.Context, userID int64, j job)
}

func newDispatcher(handle func(ctx context.Context, userID int64, j job)) *dispatcher {
	return &dispatcher{
		queues: make(map[int64]*userQueue),
		handle: handle,
	}
}

// dispatch ставит сообщение в очередь пользователя и запускает воркер, если его нет.
func (d *dispatcher) dispatch(ctx context.Context, userID int64, j job) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if q, ok := d.queues[userID]; ok {
		q.jobs = append(q.jobs, j)
		return
	}
	q := &userQueue{jobs: []job{j}}
	d.queues[userID] = q
	d.wg.Add(1)
	go d.run(ctx, userID, q)
}

func (d *dispatcher) run(ctx context.Context, userID int64, q *userQueue) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		if len(q.jobs) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		j := q.jobs[0]
		q.jobs[0] = job{}
		q.jobs = q.jobs[1:]
		d.mu.Unlock()

		d.handle(ctx, userID, j)
	}
}

// wait дожидается обработки всех принятых сообщений.
func (d *dispatcher) wait() {
	d.wg.Wait()
}

func (d *dispatcher) active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}
