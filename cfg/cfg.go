package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	GithubApi struct {
		AccessToken       string
		ApiUrl            string
		RequestsPerSecond int
		RateLimitResetMin int
	}

	KafkaProducer struct {
		TopicCommit      string
		TopicPullRequest string
		TopicIssue       string
		TopicReview      string
	}

	Kafka struct {
		Brokers  []string
		Producer KafkaProducer
	}

	// Ingest holds what the registrar needs to hand a repository over to the
	// ingestion step: the flat properties file the ingestor reads and the
	// command executed after a successful registration.
	Ingest struct {
		ConfigFile string
		Command    string
		Args       []string
	}

	Server struct {
		Port int
	}
)

type Config struct {
	App       App
	Mysql     Mysql
	GithubApi GithubApi
	Kafka     Kafka
	Ingest    Ingest
	Server    Server
}
