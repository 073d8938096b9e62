package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (ml *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "activity-dashboard",
			Version: "0.0.1",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Port:                  "3306",
			Username:              "root",
			Password:              "root",
			Database:              "activity_dashboard",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "",
			ApiUrl:            "https://api.github.com",
			RequestsPerSecond: 10,
			RateLimitResetMin: 5,
		},

		// Kafka
		Kafka: Kafka{
			Brokers: []string{"127.0.0.1:9092"},
			Producer: KafkaProducer{
				TopicCommit:      "activity.commits",
				TopicPullRequest: "activity.pull_requests",
				TopicIssue:       "activity.issues",
				TopicReview:      "activity.reviews",
			},
		},

		// Ingest
		Ingest: Ingest{
			ConfigFile: "config.properties",
			Command:    "bin/ingest",
			Args:       []string{},
		},

		// Server
		Server: Server{
			Port: 8080,
		},
	}, nil
}
