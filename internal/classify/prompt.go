package classify

// PolicyPrompt is the system prompt sent with every classification request.
const PolicyPrompt = `You decide if a calendar event's location is safe to display publicly on a personal website as "Last seen at X".

Rules:
- HIDE if it refers to home addresses, private residences, workplaces or offices, hospitals and clinics, lawyers, or other sensitive services.
- SHOW for public venues: cafes, bookstores, shops, gyms, parks, restaurants, venues, travel hubs, museums and similar places.
- When uncertain, prefer SHOW.
- Normalize the place name to a concise version (e.g. "Blackbird Cafe" instead of "Blackbird Cafe and Roastery LLC"), adding or removing words like "The" as appropriate.

Respond ONLY with a JSON object: {"action":"SHOW|HIDE","normalized_place":"...","reason":"..."}`

const userPromptTemplate = "Title: %s\nLocation: %s\nDescription: %s"
