package softgpu

import "github.com/launchdarkly/go-jsonstream/v3/jwriter"

// Stats counts the work a Device has been asked to do
type Stats struct {
	BuffersCreated  int
	LiveBuffers     int
	BufferBytes     int
	TexturesCreated int
	LiveTextures    int
	HeapsCreated    int
	LiveHeaps       int
	RootSignatures  int

	CopyDescriptorsCalls int
	DescriptorsCopied    int

	CommandListsCreated int
	ExecuteCalls        int
	ExecutedLists       int
	Barriers            int
	Draws               int
	Dispatches          int
	StateMismatches     int
}

func (s Stats) PrintJson(json jwriter.ObjectState) {
	json.Name("BuffersCreated").Int(s.BuffersCreated)
	json.Name("LiveBuffers").Int(s.LiveBuffers)
	json.Name("BufferBytes").Int(s.BufferBytes)
	json.Name("TexturesCreated").Int(s.TexturesCreated)
	json.Name("LiveTextures").Int(s.LiveTextures)
	json.Name("HeapsCreated").Int(s.HeapsCreated)
	json.Name("LiveHeaps").Int(s.LiveHeaps)
	json.Name("RootSignatures").Int(s.RootSignatures)
	json.Name("CopyDescriptorsCalls").Int(s.CopyDescriptorsCalls)
	json.Name("DescriptorsCopied").Int(s.DescriptorsCopied)
	json.Name("CommandListsCreated").Int(s.CommandListsCreated)
	json.Name("ExecuteCalls").Int(s.ExecuteCalls)
	json.Name("ExecutedLists").Int(s.ExecutedLists)
	json.Name("Barriers").Int(s.Barriers)
	json.Name("Draws").Int(s.Draws)
	json.Name("Dispatches").Int(s.Dispatches)
	json.Name("StateMismatches").Int(s.StateMismatches)
}
