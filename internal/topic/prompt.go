package topic

// validationPromptTemplate instructs the model to answer in a fixed
// labeled format so the verdict can be parsed mechanically. Arguments:
// chat name, agenda, windowed transcript.
const validationPromptTemplate = `You are moderating the group chat %q.

The stated agenda of this chat is:
%s

Here are the most recent messages, oldest first:
%s

Judge whether the conversation is still aligned with the agenda.
Respond in exactly this format:

Is_On_Topic: Yes or No
Analysis: your reasoning in a few sentences
Off_Topic_Examples: quote any messages that drift from the agenda, or "none"`

// summaryPromptTemplate frames the full-history summary. The response is
// returned to callers verbatim; nothing is parsed out of it. Argument:
// full transcript.
const summaryPromptTemplate = `Analyze the following chat messages and provide a summary including:
- Main topics discussed
- Key points or decisions made
- Overall sentiment of the conversation
- Number of participants involved

Chat messages:
%s`

// reminderTemplate is the deterministic content of a system-authored
// corrective message. Argument: agenda.
const reminderTemplate = `A friendly reminder from the chat moderator: the agenda of this chat is %q. The recent discussion appears to have drifted off topic. Let's bring the conversation back to the agenda.`
