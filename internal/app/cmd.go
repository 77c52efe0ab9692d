package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandWorker は計算履歴のクリーンアップワーカーとして起動することを示す。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
	// CommandDiff は2つの日時の差を表示する。
	CommandDiff Command = "diff"
	// CommandEpoch は日時の通算秒を表示する。
	CommandEpoch Command = "epoch"
	// CommandNow は現在の日時を表示する。
	CommandNow Command = "now"
	// CommandDemo は対話形式のデモを実行する。
	CommandDemo Command = "demo"
)

// IsCLI はコマンドが単発で結果を標準出力に書くCLIコマンドかを返す。
func (c Command) IsCLI() bool {
	switch c {
	case CommandDiff, CommandEpoch, CommandNow, CommandDemo:
		return true
	default:
		return false
	}
}

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch cmd := Command(args[0]); cmd {
	case CommandServe, CommandWorker, CommandMigrate, CommandHealthcheck,
		CommandDiff, CommandEpoch, CommandNow, CommandDemo:
		return cmd
	default:
		return CommandServe
	}
}
