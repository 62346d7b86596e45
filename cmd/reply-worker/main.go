package main

import "github.com/example/commerceops/internal/cmd"

// reply-worker 消费留言回复通知并发送邮件
func main() {
	cmd.ExecuteReplyWorker()
}
