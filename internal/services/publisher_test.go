package services

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(_ uint, event string, _ interface{}) {
	p.events = append(p.events, event)
}
